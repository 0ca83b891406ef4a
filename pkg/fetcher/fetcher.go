// Package fetcher fills the response cache from the DataForSEO API. Every
// operation checks the cache first and only requests what is missing.
package fetcher

import (
	"context"
	"errors"
	"time"

	"seo-cluster/pkg/api"
	"seo-cluster/pkg/logger"
	"seo-cluster/pkg/storage"
)

type Options struct {
	SERPBatchSize      int           `mapstructure:"serp_batch_size"`
	SERPPollInterval   time.Duration `mapstructure:"serp_poll_interval"`
	SERPTimeout        time.Duration `mapstructure:"serp_timeout"`
	VolumePollInterval time.Duration `mapstructure:"volume_poll_interval"`
	VolumeTimeout      time.Duration `mapstructure:"volume_timeout"`
	Concurrency        int           `mapstructure:"concurrency"`
	// MaxAge of cached responses. Negative means cached data never expires.
	MaxAge time.Duration `mapstructure:"-"`
}

func DefaultOptions() Options {
	return Options{
		SERPBatchSize:      100,
		SERPPollInterval:   15 * time.Second,
		SERPTimeout:        5 * time.Minute,
		VolumePollInterval: 10 * time.Second,
		VolumeTimeout:      3 * time.Minute,
		Concurrency:        5,
		MaxAge:             storage.Forever,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SERPBatchSize <= 0 || o.SERPBatchSize > 100 {
		o.SERPBatchSize = d.SERPBatchSize
	}
	if o.SERPPollInterval <= 0 {
		o.SERPPollInterval = d.SERPPollInterval
	}
	if o.SERPTimeout <= 0 {
		o.SERPTimeout = d.SERPTimeout
	}
	if o.VolumePollInterval <= 0 {
		o.VolumePollInterval = d.VolumePollInterval
	}
	if o.VolumeTimeout <= 0 {
		o.VolumeTimeout = d.VolumeTimeout
	}
	if o.Concurrency <= 0 {
		o.Concurrency = d.Concurrency
	}
	return o
}

// ProgressFunc receives the number of finished keywords of an operation.
type ProgressFunc func(current, total int, message string)

// Summary reports what one fetch operation did per keyword.
type Summary struct {
	Kind      storage.Kind `json:"kind"`
	Requested int          `json:"requested"`
	CacheHits []string     `json:"cache_hits"`
	Fetched   []string     `json:"fetched"`
	Failed    []string     `json:"failed,omitempty"`
	TimedOut  []string     `json:"timed_out,omitempty"`
	Duration  string       `json:"duration"`
}

// Complete reports whether every requested keyword is now cached.
func (s *Summary) Complete() bool {
	return len(s.CacheHits)+len(s.Fetched) == s.Requested
}

type BulkFetcher struct {
	client   api.DataForSEO
	cache    storage.Cache
	keys     *storage.KeyBuilder
	opts     Options
	progress ProgressFunc
	log      *logger.Logger
}

// New returns a fetcher. client may be nil, in which case any cache miss
// fails with api.ErrNoCredentials.
func New(client api.DataForSEO, cache storage.Cache, keys *storage.KeyBuilder, opts Options) *BulkFetcher {
	if keys == nil {
		keys = storage.DefaultKeyBuilder()
	}
	return &BulkFetcher{
		client: client,
		cache:  cache,
		keys:   keys,
		opts:   opts.withDefaults(),
		log:    logger.GetLogger().WithField("component", "bulk_fetcher"),
	}
}

func (f *BulkFetcher) WithProgress(fn ProgressFunc) *BulkFetcher {
	f.progress = fn
	return f
}

func (f *BulkFetcher) report(current, total int, message string) {
	if f.progress != nil {
		f.progress(current, total, message)
	}
}

// ScopeOf converts an API target to the cache key scope.
func ScopeOf(t api.Target) storage.Scope {
	return storage.Scope{LocationCode: t.LocationCode, LanguageCode: t.LanguageCode, Device: t.Device}
}

// partition splits keywords into cached and missing for kind.
func (f *BulkFetcher) partition(ctx context.Context, kind storage.Kind, keywords []string, target api.Target) (*Summary, []string) {
	summary := &Summary{Kind: kind, Requested: len(keywords), CacheHits: []string{}, Fetched: []string{}}
	scope := ScopeOf(target)

	var misses []string
	for _, kw := range keywords {
		_, err := f.cache.Get(ctx, f.keys.Key(kind, kw, scope), f.opts.MaxAge)
		switch {
		case err == nil:
			summary.CacheHits = append(summary.CacheHits, kw)
			f.log.WithFields(map[string]interface{}{"kind": kind, "keyword": kw}).Debug("Cache hit")
		case errors.Is(err, storage.ErrNotFound):
			misses = append(misses, kw)
			f.log.WithFields(map[string]interface{}{"kind": kind, "keyword": kw}).Debug("Cache miss")
		default:
			f.log.WithError(err).WithField("keyword", kw).Warn("Cache read failed, refetching")
			misses = append(misses, kw)
		}
	}

	f.log.WithFields(map[string]interface{}{
		"kind":   kind,
		"hits":   len(summary.CacheHits),
		"misses": len(misses),
	}).Info("Cache checked")
	return summary, misses
}

func (f *BulkFetcher) store(ctx context.Context, kind storage.Kind, kw string, target api.Target, raw []byte) error {
	key := f.keys.Key(kind, kw, ScopeOf(target))
	if err := f.cache.Set(ctx, key, raw); err != nil {
		f.log.WithError(err).WithField("key", key).Error("Failed to cache response")
		return err
	}
	return nil
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
