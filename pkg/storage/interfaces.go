package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is missing or older than the
// requested max age.
var ErrNotFound = errors.New("cache entry not found")

// Forever disables the staleness check in Get.
const Forever time.Duration = -1

// Entry is a cached API response with the time it was stored.
type Entry struct {
	Key      string    `json:"key"`
	Value    []byte    `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

// Fresh reports whether the entry is still usable for maxAge. A negative
// maxAge never expires, zero always does.
func (e Entry) Fresh(maxAge time.Duration, now time.Time) bool {
	if maxAge < 0 {
		return true
	}
	return now.Sub(e.StoredAt) < maxAge
}

// Cache stores raw JSON responses keyed by request identity.
type Cache interface {
	Get(ctx context.Context, key string, maxAge time.Duration) ([]byte, error)
	Lookup(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

type Config struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	DSN             string        `mapstructure:"dsn"`
	MemoryCacheSize int           `mapstructure:"memory_cache_size"`
	MemoryTTL       time.Duration `mapstructure:"memory_ttl"`
}

// getFresh is the shared Get on top of Lookup.
func getFresh(ctx context.Context, c Cache, key string, maxAge time.Duration) ([]byte, error) {
	entry, err := c.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if !entry.Fresh(maxAge, time.Now()) {
		return nil, ErrNotFound
	}
	return entry.Value, nil
}
