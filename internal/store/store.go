// Package store caches raw place-search provider responses.
package store

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
)

// Store persists search responses keyed by a hash of the request.
type Store interface {
	// GetCachedSearch returns the cached payload, or nil if absent or expired.
	GetCachedSearch(ctx context.Context, keyHash string) ([]byte, error)
	SetCachedSearch(ctx context.Context, keyHash string, payload []byte, ttl time.Duration) error
	DeleteExpiredSearches(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// HashKey returns the SHA-256 hex digest used as a cache key.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

// Open creates and migrates the store for driver. DriverNone (or an empty driver) returns a nil
// Store and no error; callers treat that as "no cache".
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case "", DriverNone:
		return nil, nil
	case DriverSQLite:
		s, err = NewSQLite(dsn)
	case DriverPostgres:
		s, err = NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
