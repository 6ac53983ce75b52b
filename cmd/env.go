package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pawmap/pawmap/internal/classify"
	"github.com/pawmap/pawmap/internal/cluster"
	"github.com/pawmap/pawmap/internal/config"
	"github.com/pawmap/pawmap/internal/geo"
	"github.com/pawmap/pawmap/internal/resilience"
	"github.com/pawmap/pawmap/internal/search"
	"github.com/pawmap/pawmap/internal/store"
	"github.com/pawmap/pawmap/pkg/kakao"
)

// newSearchService wires the Kakao client and the optional response cache. The returned close
// function releases the cache.
func newSearchService(ctx context.Context, c *config.Config) (*search.Service, func(), error) {
	if c.Kakao.Key == "" {
		return nil, func() {}, eris.New("kakao.key is not set (PAWMAP_KAKAO_KEY)")
	}

	client := kakao.NewClient(c.Kakao.Key,
		kakao.WithBaseURL(c.Kakao.BaseURL),
		kakao.WithHTTPClient(&http.Client{Timeout: time.Duration(c.Kakao.TimeoutSecs) * time.Second}),
		kakao.WithRateLimit(c.Kakao.RateLimit),
		kakao.WithMaxPages(c.Kakao.MaxPages),
		kakao.WithBackoff(backoff(c.Kakao.Attempts)),
	)

	st, err := store.Open(ctx, c.Store.Driver, c.Store.DatabaseURL)
	if err != nil {
		return nil, func() {}, eris.Wrap(err, "open search cache")
	}
	closeFn := func() {
		if st != nil {
			_ = st.Close()
		}
	}

	opts := []search.Option{
		search.WithCache(st, c.Search.CacheTTL()),
		search.WithPageSize(c.Kakao.PageSize),
	}
	if c.Search.X != "" && c.Search.Y != "" {
		opts = append(opts, search.WithArea(search.Area{X: c.Search.X, Y: c.Search.Y, Radius: c.Search.Radius}))
	}
	if st != nil {
		zap.L().Info("search cache enabled", zap.String("driver", c.Store.Driver))
	}
	return search.NewService(client, opts...), closeFn, nil
}

func backoff(attempts int) resilience.Backoff {
	b := resilience.DefaultBackoff()
	if attempts > 0 {
		b.Attempts = attempts
	}
	return b
}

// loadClusters reads the cluster documents. Missing files leave every district unclustered.
func loadClusters(ctx context.Context, c *config.Config) *cluster.Reference {
	if c.Data.Clusters == "" || c.Data.ClusterInfo == "" {
		return nil
	}
	ref, err := cluster.Load(ctx, c.Data.Clusters, c.Data.ClusterInfo)
	if err != nil {
		zap.L().Warn("cluster data unavailable, districts will be unclustered", zap.Error(err))
		return nil
	}
	return ref
}

// loadBoundaries reads the district outlines when configured.
func loadBoundaries(c *config.Config) ([]geo.Boundary, error) {
	if c.Data.Boundaries == "" {
		return nil, nil
	}
	bs, err := geo.LoadBoundaries(c.Data.Boundaries, geo.ShapefileOptions{
		NameField: c.Data.NameField,
		Encoding:  c.Data.Encoding,
	})
	if err != nil {
		return nil, eris.Wrap(err, "load boundaries")
	}
	zap.L().Info("district boundaries loaded", zap.Int("count", len(bs)))
	return bs, nil
}

// loadPalette returns the configured palette or the defaults.
func loadPalette(c *config.Config) (cluster.Palette, error) {
	if c.Data.Palette == "" {
		return cluster.DefaultPalette(), nil
	}
	return cluster.LoadPalette(c.Data.Palette)
}

func policyFlag(name string) (classify.Policy, error) {
	if name == "" {
		name = cfg.Search.Policy
	}
	return classify.ParsePolicy(name)
}

// openOutput returns stdout-like w when path is empty.
func openOutput(path string, w io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return w, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "create output file %s", path)
	}
	return f, func() { _ = f.Close() }, nil
}
