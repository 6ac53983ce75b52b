// Package search runs place searches against the provider and filters them to walkable places.
package search

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pawmap/pawmap/internal/classify"
	"github.com/pawmap/pawmap/internal/model"
	"github.com/pawmap/pawmap/internal/store"
	"github.com/pawmap/pawmap/pkg/kakao"
)

// DefaultCacheTTL is how long a provider response stays cached.
const DefaultCacheTTL = 24 * time.Hour

// Service searches the provider, optionally through a response cache.
type Service struct {
	client kakao.Client
	cache  store.Store // nil disables caching
	ttl    time.Duration
	area   *Area
	size   int
}

// Area restricts searches to Radius metres around a WGS84 point.
type Area struct {
	X, Y   string
	Radius int
}

// Option configures a Service.
type Option func(*Service)

// WithCache stores raw provider results in st for ttl. A nil store leaves caching off.
func WithCache(st store.Store, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = st
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithArea limits every search to an area.
func WithArea(a Area) Option {
	return func(s *Service) {
		s.area = &a
	}
}

// WithPageSize sets the provider page size. Zero keeps the provider default.
func WithPageSize(n int) Option {
	return func(s *Service) {
		s.size = n
	}
}

// NewService creates a Service around a provider client.
func NewService(client kakao.Client, opts ...Option) *Service {
	s := &Service{
		client: client,
		ttl:    DefaultCacheTTL,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search fetches every result page for keyword and returns the places accepted by policy.
func (s *Service) Search(ctx context.Context, keyword string, policy classify.Policy) ([]model.Place, error) {
	places, err := s.fetch(ctx, keyword)
	if err != nil {
		return nil, err
	}
	filtered := classify.Classify(places, policy)
	zap.L().Debug("search: filtered places",
		zap.String("keyword", keyword),
		zap.String("policy", policy.String()),
		zap.Int("fetched", len(places)),
		zap.Int("kept", len(filtered)),
	)
	return filtered, nil
}

// SearchAndFilter runs Search and hands the outcome to fn exactly once. On failure fn receives
// a nil slice and the error.
func (s *Service) SearchAndFilter(ctx context.Context, keyword string, policy classify.Policy, fn func([]model.Place, error)) {
	places, err := s.Search(ctx, keyword, policy)
	if err != nil {
		zap.L().Error("search: place search failed", zap.String("keyword", keyword), zap.Error(err))
		if fn != nil {
			fn(nil, err)
		}
		return
	}
	if fn != nil {
		fn(places, nil)
	}
}

// SearchMany runs Search for several keywords concurrently. Results keep keyword order and
// places already returned for an earlier keyword are dropped.
func (s *Service) SearchMany(ctx context.Context, keywords []string, policy classify.Policy, maxConcurrent int) ([]model.Place, error) {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	results := make([][]model.Place, len(keywords))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i, kw := range keywords {
		g.Go(func() error {
			places, err := s.Search(gCtx, kw, policy)
			if err != nil {
				return eris.Wrapf(err, "search: keyword %q", kw)
			}
			results[i] = places
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := []model.Place{}
	for _, places := range results {
		for _, p := range places {
			if p.ID != "" {
				if seen[p.ID] {
					continue
				}
				seen[p.ID] = true
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) request(keyword string) kakao.SearchRequest {
	req := kakao.SearchRequest{Query: keyword, Size: s.size}
	if s.area != nil {
		req.X, req.Y, req.Radius = s.area.X, s.area.Y, s.area.Radius
	}
	return req
}

func (s *Service) fetch(ctx context.Context, keyword string) ([]model.Place, error) {
	req := s.request(keyword)
	key := store.HashKey(kakao.CacheKey(req))

	if s.cache != nil {
		if places, ok := s.cached(ctx, key); ok {
			return places, nil
		}
	}

	docs, err := s.client.SearchAll(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "search: provider")
	}
	places := make([]model.Place, 0, len(docs))
	for _, d := range docs {
		places = append(places, FromDocument(d))
	}

	if s.cache != nil {
		s.store(ctx, key, places)
	}
	return places, nil
}

func (s *Service) cached(ctx context.Context, key string) ([]model.Place, bool) {
	data, err := s.cache.GetCachedSearch(ctx, key)
	if err != nil {
		zap.L().Warn("search: cache read failed", zap.Error(err))
		return nil, false
	}
	if data == nil {
		return nil, false
	}
	var places []model.Place
	if err := json.Unmarshal(data, &places); err != nil {
		zap.L().Warn("search: cached payload unreadable", zap.Error(err))
		return nil, false
	}
	return places, true
}

func (s *Service) store(ctx context.Context, key string, places []model.Place) {
	data, err := json.Marshal(places)
	if err != nil {
		zap.L().Warn("search: marshal for cache", zap.Error(err))
		return
	}
	if err := s.cache.SetCachedSearch(ctx, key, data, s.ttl); err != nil {
		zap.L().Warn("search: cache write failed", zap.Error(err))
	}
}

// FromDocument converts a provider document into a Place.
func FromDocument(d kakao.Document) model.Place {
	addr := d.RoadAddress
	if addr == "" {
		addr = d.AddressName
	}
	return model.Place{
		ID:           d.ID,
		Name:         d.PlaceName,
		Category:     d.CategoryName,
		CategoryPath: model.SplitCategoryPath(d.CategoryName),
		Address:      addr,
		X:            d.X,
		Y:            d.Y,
		URL:          d.PlaceURL,
	}
}
