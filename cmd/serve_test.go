package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/pawmap/pawmap/internal/classify"
	"github.com/pawmap/pawmap/internal/cluster"
	"github.com/pawmap/pawmap/internal/geo"
	"github.com/pawmap/pawmap/internal/model"
	"github.com/pawmap/pawmap/internal/presenter"
)

type stubSearcher struct {
	places []model.Place
	err    error
	policy classify.Policy
}

func (s *stubSearcher) SearchAndFilter(_ context.Context, _ string, policy classify.Policy, fn func([]model.Place, error)) {
	s.policy = policy
	if s.err != nil {
		fn(nil, s.err)
		return
	}
	fn(s.places, nil)
}

func testServer(t *testing.T, searcher presenter.Searcher) *server {
	t.Helper()
	districts := []model.District{
		{Name: "A", HospitalCount: 2, CafeCount: 1, ParkCount: 0},
		{Name: "B", HospitalCount: 0, CafeCount: 0, ParkCount: 5},
		{Name: "C", HospitalCount: 1, CafeCount: 1, ParkCount: 1},
	}
	ref := &cluster.Reference{
		Assignments: []model.ClusterAssignment{{District: "A", Cluster: 1}},
		Descriptors: []model.ClusterDescriptor{{Cluster: 1, Color: "#33FF57", TypeLabel: "의료 중심형", Hospital: 2, Cafe: 1}},
	}
	mp := geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{
		{{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}},
	})
	p := presenter.New(districts, model.Weights{Hospital: 1, Cafe: 1, Park: 1}, 5, presenter.WithClusters(ref))

	s := &server{
		presenter:  p,
		boundaries: []geo.Boundary{geo.NewBoundary("A", mp)},
		nameField:  geo.DefaultNameField,
		policy:     "lenient",
	}
	if searcher != nil {
		s.searcher = searcher
	}
	return s
}

func serveRequest(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestBuildRouter_Health(t *testing.T) {
	h := buildRouter(testServer(t, nil), []string{"*"})

	rr := serveRequest(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestBuildRouter_Rank(t *testing.T) {
	h := buildRouter(testServer(t, nil), []string{"*"})

	rr := serveRequest(t, h, http.MethodGet, "/api/rank?hospital=3&top=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body rankResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Ranking, 2)
	assert.Equal(t, "A", body.Ranking[0].Name)
	assert.InDelta(t, 7.0, body.Ranking[0].Score, 1e-9)
	assert.InDelta(t, 3.0, body.Weights.Hospital, 1e-9)
	assert.InDelta(t, 1.0, body.Weights.Park, 1e-9)
	// B and C tie at 5; input order breaks the tie.
	assert.Equal(t, []string{"A", "B"}, body.Chart.Labels)
	require.Len(t, body.List, 2)
	assert.Equal(t, "7.0점", body.List[0].Score)
}

func TestBuildRouter_RankKeepsOmittedWeights(t *testing.T) {
	s := testServer(t, nil)
	h := buildRouter(s, []string{"*"})

	require.Equal(t, http.StatusOK, serveRequest(t, h, http.MethodGet, "/api/rank?hospital=3", nil).Code)
	rr := serveRequest(t, h, http.MethodGet, "/api/rank?park=2&top=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body rankResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, model.Weights{Hospital: 3, Cafe: 1, Park: 2}, body.Weights)
	require.Len(t, body.Ranking, 1)
	// B: 5 parks * 2 = 10 beats A: 2*3 + 1 = 7.
	assert.Equal(t, "B", body.Ranking[0].Name)
	assert.Equal(t, 1, s.presenter.View().TopN)
}

func TestBuildRouter_RankBadInput(t *testing.T) {
	h := buildRouter(testServer(t, nil), []string{"*"})

	assert.Equal(t, http.StatusBadRequest, serveRequest(t, h, http.MethodGet, "/api/rank?cafe=lots", nil).Code)
	assert.Equal(t, http.StatusBadRequest, serveRequest(t, h, http.MethodGet, "/api/rank?top=0", nil).Code)
}

func TestBuildRouter_Tooltip(t *testing.T) {
	h := buildRouter(testServer(t, nil), []string{"*"})

	// Initial ranking with unit weights: B (5), A (3), C (3).
	rr := serveRequest(t, h, http.MethodGet, "/api/rank/tooltip?dataset=2&index=0", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "공원: 5.0점 (5개)", body["tooltip"])

	assert.Equal(t, http.StatusNotFound, serveRequest(t, h, http.MethodGet, "/api/rank/tooltip?dataset=0&index=9", nil).Code)
	assert.Equal(t, http.StatusBadRequest, serveRequest(t, h, http.MethodGet, "/api/rank/tooltip?dataset=x&index=0", nil).Code)
}

func TestBuildRouter_PlacesWithoutSearcher(t *testing.T) {
	h := buildRouter(testServer(t, nil), []string{"*"})

	rr := serveRequest(t, h, http.MethodGet, "/api/places?q=공원", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestBuildRouter_Places(t *testing.T) {
	stub := &stubSearcher{places: []model.Place{{ID: "1", Name: "올림픽공원", Category: "여행 > 공원"}}}
	h := buildRouter(testServer(t, stub), []string{"*"})

	rr := serveRequest(t, h, http.MethodGet, "/api/places?q=공원&policy=park", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, classify.ParkOnly, stub.policy)

	var body struct {
		Keyword string        `json:"keyword"`
		Policy  string        `json:"policy"`
		Places  []model.Place `json:"places"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "공원", body.Keyword)
	assert.Equal(t, "park", body.Policy)
	require.Len(t, body.Places, 1)
	assert.Equal(t, "올림픽공원", body.Places[0].Name)
}

func TestBuildRouter_PlacesErrors(t *testing.T) {
	stub := &stubSearcher{err: errors.New("kakao: status 401")}
	h := buildRouter(testServer(t, stub), []string{"*"})

	assert.Equal(t, http.StatusBadRequest, serveRequest(t, h, http.MethodGet, "/api/places", nil).Code)
	assert.Equal(t, http.StatusBadRequest, serveRequest(t, h, http.MethodGet, "/api/places?q=a&policy=loose", nil).Code)

	rr := serveRequest(t, h, http.MethodGet, "/api/places?q=a", nil)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "status 401")
}

func TestBuildRouter_Cluster(t *testing.T) {
	s := testServer(t, nil)
	h := buildRouter(s, []string{"*"})

	rr := serveRequest(t, h, http.MethodGet, "/api/clusters/A", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Popup presenter.Popup `json:"popup"`
		Style cluster.Style   `json:"style"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Popup.Clustered)
	assert.Equal(t, "의료 중심형", body.Popup.TypeLabel)
	// Clusters are hidden until the view is toggled.
	assert.Equal(t, cluster.DefaultStyle, body.Style)

	s.presenter.SetMode(presenter.Clustered)
	rr = serveRequest(t, h, http.MethodGet, "/api/clusters/A", nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "#33FF57", body.Style.FillColor)
}

func TestBuildRouter_ToggleAndMode(t *testing.T) {
	s := testServer(t, nil)
	h := buildRouter(s, []string{"*"})

	rr := serveRequest(t, h, http.MethodPost, "/api/view/toggle", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"mode":"clustered"`)
	assert.Equal(t, presenter.Clustered, s.presenter.Mode())

	rr = serveRequest(t, h, http.MethodPut, "/api/view/mode", []byte(`{"mode":"clustered"}`))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"changed":false`)

	rr = serveRequest(t, h, http.MethodPut, "/api/view/mode", []byte(`{"mode":"unclustered"}`))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"changed":true`)
	assert.Equal(t, presenter.Unclustered, s.presenter.Mode())

	assert.Equal(t, http.StatusBadRequest, serveRequest(t, h, http.MethodPut, "/api/view/mode", []byte(`{"mode":"heatmap"}`)).Code)
	assert.Equal(t, http.StatusBadRequest, serveRequest(t, h, http.MethodPut, "/api/view/mode", []byte(`{`)).Code)
}

func TestBuildRouter_View(t *testing.T) {
	h := buildRouter(testServer(t, nil), []string{"*"})

	rr := serveRequest(t, h, http.MethodGet, "/api/view", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"mode":"unclustered"`)
	assert.Contains(t, rr.Body.String(), `"top_n":5`)
}

func TestBuildRouter_Map(t *testing.T) {
	h := buildRouter(testServer(t, nil), []string{"*"})

	rr := serveRequest(t, h, http.MethodGet, "/api/map", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/geo+json", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `"FeatureCollection"`)
	assert.Contains(t, rr.Body.String(), `"hoverStyle"`)
}

func TestBuildRouter_MapWithoutBoundaries(t *testing.T) {
	s := testServer(t, nil)
	s.boundaries = nil
	h := buildRouter(s, []string{"*"})

	assert.Equal(t, http.StatusNotFound, serveRequest(t, h, http.MethodGet, "/api/map", nil).Code)
}

func TestBuildRouter_Legend(t *testing.T) {
	s := testServer(t, nil)
	h := buildRouter(s, []string{"*"})

	var legend presenter.Legend
	rr := serveRequest(t, h, http.MethodGet, "/api/legend", nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &legend))
	assert.False(t, legend.Visible)

	s.presenter.Toggle()
	rr = serveRequest(t, h, http.MethodGet, "/api/legend", nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &legend))
	assert.True(t, legend.Visible)
	assert.Len(t, legend.Entries, 1)
}

func TestBuildRouter_CORS(t *testing.T) {
	h := buildRouter(testServer(t, nil), []string{"https://map.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://map.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "https://map.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}
