package storage

import (
	"container/list"
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type cacheItem struct {
	entry   Entry
	addedAt time.Time
	element *list.Element
}

// MemoryCache is an LRU cache with optional TTL. The TTL bounds how long an
// item stays in memory and is independent of the entry's StoredAt, which
// Get checks against maxAge.
type MemoryCache struct {
	maxSize int
	ttl     time.Duration
	items   map[string]*cacheItem
	lruList *list.List
	mu      sync.Mutex
	stop    chan struct{}
	once    sync.Once
}

func NewMemoryCache(maxSize int) *MemoryCache {
	return NewMemoryCacheWithTTL(maxSize, 0)
}

func NewMemoryCacheWithTTL(maxSize int, ttl time.Duration) *MemoryCache {
	mc := &MemoryCache{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*cacheItem),
		lruList: list.New(),
		stop:    make(chan struct{}),
	}
	if ttl > 0 {
		go mc.cleanupRoutine()
	}
	return mc
}

func (mc *MemoryCache) Get(ctx context.Context, key string, maxAge time.Duration) ([]byte, error) {
	return getFresh(ctx, mc, key, maxAge)
}

func (mc *MemoryCache) Lookup(_ context.Context, key string) (Entry, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	item, ok := mc.items[key]
	if !ok {
		return Entry{}, ErrNotFound
	}
	if mc.expired(item, time.Now()) {
		mc.deleteItem(item)
		return Entry{}, ErrNotFound
	}
	mc.lruList.MoveToFront(item.element)
	return item.entry, nil
}

func (mc *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	mc.Put(Entry{Key: key, Value: value, StoredAt: time.Now().UTC()})
	return nil
}

// Put stores an entry keeping its original StoredAt.
func (mc *MemoryCache) Put(entry Entry) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := time.Now()
	if item, ok := mc.items[entry.Key]; ok {
		item.entry = entry
		item.addedAt = now
		mc.lruList.MoveToFront(item.element)
		return
	}

	item := &cacheItem{entry: entry, addedAt: now}
	item.element = mc.lruList.PushFront(item)
	mc.items[entry.Key] = item

	if mc.maxSize > 0 && len(mc.items) > mc.maxSize {
		mc.evictOldest()
	}
}

func (mc *MemoryCache) Delete(_ context.Context, key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if item, ok := mc.items[key]; ok {
		mc.deleteItem(item)
	}
	return nil
}

func (mc *MemoryCache) Clear(context.Context) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.items = make(map[string]*cacheItem)
	mc.lruList = list.New()
	return nil
}

func (mc *MemoryCache) Keys(_ context.Context, prefix string) ([]string, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	keys := make([]string, 0, len(mc.items))
	for key := range mc.items {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close stops the cleanup goroutine.
func (mc *MemoryCache) Close() error {
	mc.once.Do(func() { close(mc.stop) })
	return nil
}

func (mc *MemoryCache) Size() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.items)
}

func (mc *MemoryCache) Stats() CacheStats {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	return CacheStats{
		Size:    len(mc.items),
		MaxSize: mc.maxSize,
		TTL:     mc.ttl,
	}
}

func (mc *MemoryCache) expired(item *cacheItem, now time.Time) bool {
	return mc.ttl > 0 && now.Sub(item.addedAt) > mc.ttl
}

func (mc *MemoryCache) evictOldest() {
	if element := mc.lruList.Back(); element != nil {
		mc.deleteItem(element.Value.(*cacheItem))
	}
}

func (mc *MemoryCache) deleteItem(item *cacheItem) {
	delete(mc.items, item.entry.Key)
	mc.lruList.Remove(item.element)
}

func (mc *MemoryCache) cleanupRoutine() {
	ticker := time.NewTicker(mc.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-mc.stop:
			return
		case <-ticker.C:
			mc.cleanupExpired()
		}
	}
}

func (mc *MemoryCache) cleanupExpired() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := time.Now()
	for _, item := range mc.items {
		if mc.expired(item, now) {
			mc.deleteItem(item)
		}
	}
}

type CacheStats struct {
	Size    int           `json:"size"`
	MaxSize int           `json:"max_size"`
	TTL     time.Duration `json:"ttl"`
}
