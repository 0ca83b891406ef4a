package storage

import (
	"context"
	"errors"
	"time"
)

// LayeredCache serves reads from an in-memory LRU in front of a persistent
// cache. Writes go to both.
type LayeredCache struct {
	front *MemoryCache
	back  Cache
}

func NewLayeredCache(front *MemoryCache, back Cache) *LayeredCache {
	return &LayeredCache{front: front, back: back}
}

func (lc *LayeredCache) Get(ctx context.Context, key string, maxAge time.Duration) ([]byte, error) {
	return getFresh(ctx, lc, key, maxAge)
}

func (lc *LayeredCache) Lookup(ctx context.Context, key string) (Entry, error) {
	if entry, err := lc.front.Lookup(ctx, key); err == nil {
		return entry, nil
	}
	entry, err := lc.back.Lookup(ctx, key)
	if err != nil {
		return Entry{}, err
	}
	lc.front.Put(entry)
	return entry, nil
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value []byte) error {
	if err := lc.back.Set(ctx, key, value); err != nil {
		return err
	}
	lc.front.Put(Entry{Key: key, Value: value, StoredAt: time.Now().UTC()})
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, key string) error {
	lc.front.Delete(ctx, key)
	return lc.back.Delete(ctx, key)
}

func (lc *LayeredCache) Clear(ctx context.Context) error {
	lc.front.Clear(ctx)
	return lc.back.Clear(ctx)
}

func (lc *LayeredCache) Keys(ctx context.Context, prefix string) ([]string, error) {
	return lc.back.Keys(ctx, prefix)
}

func (lc *LayeredCache) Close() error {
	return errors.Join(lc.front.Close(), lc.back.Close())
}

// Stats reports the in-memory layer only.
func (lc *LayeredCache) Stats() CacheStats {
	return lc.front.Stats()
}
