// Package mocks provides test doubles for the kakao client.
package mocks

import (
	"context"

	kakao "github.com/pawmap/pawmap/pkg/kakao"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// KeywordSearch provides a mock function with given fields: ctx, req
func (_m *MockClient) KeywordSearch(ctx context.Context, req kakao.SearchRequest) (*kakao.SearchResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for KeywordSearch")
	}

	var r0 *kakao.SearchResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, kakao.SearchRequest) (*kakao.SearchResponse, error)); ok {
		return rf(ctx, req)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*kakao.SearchResponse)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// SearchAll provides a mock function with given fields: ctx, req
func (_m *MockClient) SearchAll(ctx context.Context, req kakao.SearchRequest) ([]kakao.Document, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for SearchAll")
	}

	var r0 []kakao.Document
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, kakao.SearchRequest) ([]kakao.Document, error)); ok {
		return rf(ctx, req)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]kakao.Document)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// NewMockClient creates a new instance of MockClient. It also registers a testing interface on
// the mock and a cleanup function to assert the mocks expectations.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ kakao.Client = (*MockClient)(nil)
