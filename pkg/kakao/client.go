// Package kakao is a client for the Kakao Local keyword search API.
package kakao

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/pawmap/pawmap/internal/resilience"
)

const (
	defaultBaseURL  = "https://dapi.kakao.com"
	keywordPath     = "/v2/local/search/keyword.json"
	defaultPageSize = 15
	// MaxPage is the last page the API will return for a query.
	MaxPage = 45
)

// Client performs Kakao Local keyword searches.
type Client interface {
	// KeywordSearch fetches one page of results.
	KeywordSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error)

	// SearchAll follows pages until the API reports the last one, dropping repeated ids.
	SearchAll(ctx context.Context, req SearchRequest) ([]Document, error)
}

// SearchRequest holds keyword search parameters. X and Y are longitude and latitude; when
// both are set the search is limited to Radius metres around them.
type SearchRequest struct {
	Query  string
	X      string
	Y      string
	Radius int
	Page   int
	Size   int
}

// SearchResponse is one page of keyword search results.
type SearchResponse struct {
	Documents []Document `json:"documents"`
	Meta      Meta       `json:"meta"`
}

// Document is a single place.
type Document struct {
	ID           string `json:"id"`
	PlaceName    string `json:"place_name"`
	CategoryName string `json:"category_name"`
	AddressName  string `json:"address_name"`
	RoadAddress  string `json:"road_address_name"`
	Phone        string `json:"phone"`
	PlaceURL     string `json:"place_url"`
	X            string `json:"x"`
	Y            string `json:"y"`
	Distance     string `json:"distance,omitempty"`
}

// Meta describes paging state.
type Meta struct {
	TotalCount    int  `json:"total_count"`
	PageableCount int  `json:"pageable_count"`
	IsEnd         bool `json:"is_end"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the requests-per-second pacing between calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithBackoff sets how throttled or failed requests are retried.
func WithBackoff(b resilience.Backoff) Option {
	return func(c *httpClient) {
		c.backoff = b
	}
}

// WithMaxPages caps how many pages SearchAll fetches.
func WithMaxPages(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

type httpClient struct {
	apiKey   string
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	backoff  resilience.Backoff
	maxPages int
}

// NewClient creates a Kakao Local API client authenticated with a REST API key.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter:  rate.NewLimiter(5, 1),
		backoff:  resilience.DefaultBackoff(),
		maxPages: MaxPage,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) KeywordSearch(ctx context.Context, sr SearchRequest) (*SearchResponse, error) {
	if sr.Query == "" {
		return nil, eris.New("kakao: query is required")
	}
	return resilience.Retry(ctx, c.backoff, "kakao.keyword_search", func(ctx context.Context) (*SearchResponse, error) {
		return c.keywordSearch(ctx, sr)
	})
}

func (c *httpClient) keywordSearch(ctx context.Context, sr SearchRequest) (*SearchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "kakao: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+keywordPath+"?"+encodeParams(sr), nil)
	if err != nil {
		return nil, eris.Wrap(err, "kakao: create request")
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "kakao: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "kakao: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Wrap(&resilience.StatusError{StatusCode: resp.StatusCode, Body: string(body)}, "kakao")
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "kakao: unmarshal response")
	}
	return &result, nil
}

func (c *httpClient) SearchAll(ctx context.Context, sr SearchRequest) ([]Document, error) {
	seen := make(map[string]bool)
	var all []Document

	page := sr.Page
	if page < 1 {
		page = 1
	}
	for fetched := 0; fetched < c.maxPages && page <= MaxPage; fetched++ {
		sr.Page = page
		resp, err := c.KeywordSearch(ctx, sr)
		if err != nil {
			return all, eris.Wrapf(err, "kakao: search %q page %d", sr.Query, page)
		}
		if len(resp.Documents) == 0 {
			break
		}
		for _, d := range resp.Documents {
			if d.ID != "" && seen[d.ID] {
				continue
			}
			seen[d.ID] = true
			all = append(all, d)
		}
		if resp.Meta.IsEnd {
			break
		}
		page++
	}
	return all, nil
}

// CacheKey identifies a single request for response caching.
func CacheKey(sr SearchRequest) string {
	return encodeParams(sr)
}

func encodeParams(sr SearchRequest) string {
	v := url.Values{}
	v.Set("query", sr.Query)

	page := sr.Page
	if page < 1 {
		page = 1
	}
	size := sr.Size
	if size < 1 || size > defaultPageSize {
		size = defaultPageSize
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("size", strconv.Itoa(size))

	if sr.X != "" && sr.Y != "" {
		v.Set("x", sr.X)
		v.Set("y", sr.Y)
		if sr.Radius > 0 {
			v.Set("radius", strconv.Itoa(sr.Radius))
		}
	}
	return v.Encode()
}
