package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"seo-cluster/internal/config"
	"seo-cluster/internal/service"
	"seo-cluster/pkg/api"
	"seo-cluster/pkg/cluster"
	"seo-cluster/pkg/dataset"
	"seo-cluster/pkg/fetcher"
	"seo-cluster/pkg/keyword"
	"seo-cluster/pkg/logger"
	"seo-cluster/pkg/report"
	"seo-cluster/pkg/storage"
)

// ErrNoKeywords is returned when a request has no usable keyword.
var ErrNoKeywords = errors.New("no keywords provided")

// ErrMissingData is matched with errors.Is by MissingDataError.
var ErrMissingData = errors.New("cached data is missing")

// MissingDataError lists keywords that have no cached SERP response.
type MissingDataError struct {
	Keywords []string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("%s for %d keywords: %s", ErrMissingData, len(e.Keywords), strings.Join(e.Keywords, ", "))
}

func (e *MissingDataError) Is(target error) bool {
	return target == ErrMissingData
}

// ClientFactory builds the API client on first use so that commands that
// only read the cache work without credentials.
type ClientFactory func() (api.DataForSEO, error)

type Controller struct {
	cfg       *config.Config
	cache     storage.Cache
	keys      *storage.KeyBuilder
	loader    service.DatasetLoader
	newClient ClientFactory
	progress  fetcher.ProgressFunc
	startedAt time.Time
	log       *logger.Logger
	secureLog *logger.SecurityLogger

	mu     sync.Mutex
	client api.DataForSEO
}

type Option func(*Controller)

func WithClientFactory(f ClientFactory) Option {
	return func(c *Controller) { c.newClient = f }
}

func WithProgress(fn fetcher.ProgressFunc) Option {
	return func(c *Controller) { c.progress = fn }
}

func NewController(cfg *config.Config, cache storage.Cache, opts ...Option) (*Controller, error) {
	keys, err := cfg.KeyBuilder()
	if err != nil {
		return nil, fmt.Errorf("failed to build cache keys: %w", err)
	}

	log := logger.GetLogger().WithField("component", "controller")
	c := &Controller{
		cfg:       cfg,
		cache:     cache,
		keys:      keys,
		loader:    dataset.NewLoader(cache, keys, cfg.Fetch.MaxAge()),
		startedAt: time.Now(),
		log:       log,
		secureLog: logger.GetSecurityLogger(log),
	}
	c.newClient = func() (api.DataForSEO, error) {
		client, err := api.NewClient(cfg.API)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Controller) apiClient() (api.DataForSEO, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	client, err := c.newClient()
	if err != nil {
		return nil, err
	}
	c.secureLog.SafeInfo("DataForSEO client ready", map[string]interface{}{
		"login":    c.cfg.API.Login,
		"base_url": c.cfg.API.ResolveBaseURL(),
	})
	c.client = client
	return client, nil
}

func (c *Controller) target(override *api.Target) (api.Target, error) {
	t := c.cfg.Target
	if override != nil {
		if override.LocationCode != 0 {
			t.LocationCode = override.LocationCode
		}
		if override.LanguageCode != "" {
			t.LanguageCode = override.LanguageCode
		}
		if override.Device != "" {
			t.Device = override.Device
		}
	}
	if err := config.ValidateDevice(t.Device); err != nil {
		return api.Target{}, err
	}
	return t, nil
}

// Fetch fills the cache for every requested kind. Per-keyword API failures
// are reported in the summaries, not returned as errors.
func (c *Controller) Fetch(ctx context.Context, req service.FetchRequest) (*service.FetchResponse, error) {
	keywords := keyword.Dedupe(req.Keywords)
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}
	target, err := c.target(req.Target)
	if err != nil {
		return nil, err
	}
	kinds, err := fetcher.ParseKinds(req.Kinds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	client, err := c.apiClient()
	if err != nil {
		return nil, err
	}

	f := fetcher.New(client, c.cache, c.keys, c.cfg.FetcherOptions())
	if c.progress != nil {
		f = f.WithProgress(c.progress)
	}

	c.secureLog.SafeInfo("Fetching keyword data", map[string]interface{}{
		"keywords": keywords,
		"kinds":    kinds,
	})
	summaries, err := f.FetchAll(ctx, keywords, target, kinds...)
	if err != nil {
		return nil, err
	}

	resp := &service.FetchResponse{Keywords: len(keywords), Complete: true, Summaries: summaries}
	for _, s := range summaries {
		if !s.Complete() {
			resp.Complete = false
		}
	}
	return resp, nil
}

func (c *Controller) clusterOptions(req service.ClusterRequest) (cluster.Options, error) {
	params := c.cfg.Clustering
	if req.Algorithm != "" {
		params.Algorithm = req.Algorithm
	}
	if req.Strategy != "" {
		params.TieBreak = req.Strategy
	}
	if req.MinIntersections != nil {
		params.MinIntersections = *req.MinIntersections
	}
	if req.URLsToCheck != nil {
		params.URLsToCheck = *req.URLsToCheck
	}
	if err := config.ValidateClusterParams(params.MinIntersections, params.URLsToCheck); err != nil {
		return cluster.Options{}, err
	}

	merged := *c.cfg
	merged.Clustering = params
	opts, err := merged.ClusterOptions()
	if err != nil {
		return cluster.Options{}, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	return opts, nil
}

// Cluster reads cached data only. Keywords without a SERP response make it
// fail with a MissingDataError unless the request allows a partial run.
func (c *Controller) Cluster(ctx context.Context, req service.ClusterRequest) (*report.Report, error) {
	keywords := keyword.Dedupe(req.Keywords)
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}
	target, err := c.target(req.Target)
	if err != nil {
		return nil, err
	}
	opts, err := c.clusterOptions(req)
	if err != nil {
		return nil, err
	}

	ds, err := c.loader.Load(ctx, keywords, target, opts.URLsToCheck)
	if err != nil {
		return nil, fmt.Errorf("failed to load cached data: %w", err)
	}
	if !ds.Complete() {
		if !req.AllowPartial {
			return nil, &MissingDataError{Keywords: ds.Missing}
		}
		c.log.WithField("missing", len(ds.Missing)).Warn("Clustering without keywords that lack SERP data")
	}

	opts.Metrics = ds.Metrics
	start := time.Now()
	res := cluster.Run(ds.Entries, opts)
	rep := report.Build(uuid.NewString(), res, ds, opts)

	c.log.WithFields(map[string]interface{}{
		"run_id":    rep.RunID,
		"algorithm": opts.Algorithm,
		"strategy":  opts.TieBreak,
		"keywords":  len(ds.Entries),
		"clusters":  rep.Stats.Clusters,
		"duration":  time.Since(start).String(),
	}).Info("Clustering completed")
	return rep, nil
}

// Inspect returns one cached response.
func (c *Controller) Inspect(ctx context.Context, key string) (*service.CacheEntry, error) {
	entry, err := c.cache.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	value := json.RawMessage(entry.Value)
	if !json.Valid(value) {
		quoted, err := json.Marshal(string(entry.Value))
		if err != nil {
			return nil, err
		}
		value = quoted
	}
	return &service.CacheEntry{Key: entry.Key, StoredAt: entry.StoredAt, Value: value}, nil
}

// ClearCache removes every cached response and returns how many there were.
func (c *Controller) ClearCache(ctx context.Context) (int, error) {
	keys, err := c.cache.Keys(ctx, "")
	if err != nil {
		return 0, err
	}
	if err := c.cache.Clear(ctx); err != nil {
		return 0, err
	}
	c.log.WithField("entries", len(keys)).Info("Cache cleared")
	return len(keys), nil
}

func (c *Controller) Status(ctx context.Context) (*service.StatusResponse, error) {
	health := map[string]bool{
		"cache":       true,
		"credentials": c.cfg.API.Login != "" && c.cfg.API.Password != "",
	}
	metrics := map[string]interface{}{
		"uptime":         time.Since(c.startedAt).Round(time.Second).String(),
		"storage_driver": c.cfg.Storage.Driver,
		"sandbox":        c.cfg.API.Sandbox,
	}

	keys, err := c.cache.Keys(ctx, "")
	if err != nil {
		health["cache"] = false
		c.log.WithError(err).Warn("Cache is not readable")
	} else {
		perKind := make(map[string]int, len(fetcher.AllKinds))
		for _, k := range keys {
			if i := strings.IndexByte(k, '|'); i > 0 {
				perKind[k[:i]]++
			}
		}
		metrics["cache_entries"] = len(keys)
		metrics["cache_entries_by_kind"] = perKind
	}

	if s, ok := c.cache.(interface{ Stats() storage.CacheStats }); ok {
		metrics["memory_cache"] = s.Stats()
	}

	c.mu.Lock()
	if s, ok := c.client.(interface{ Stats() map[string]uint64 }); ok {
		metrics["api"] = s.Stats()
	}
	c.mu.Unlock()

	status := "ok"
	if !health["cache"] {
		status = "degraded"
	}
	return &service.StatusResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Metrics:   metrics,
		Health:    health,
	}, nil
}

var _ service.Service = (*Controller)(nil)
