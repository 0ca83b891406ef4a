package service

import (
	"context"
	"encoding/json"
	"time"

	"seo-cluster/pkg/api"
	"seo-cluster/pkg/dataset"
	"seo-cluster/pkg/fetcher"
	"seo-cluster/pkg/report"
)

type FetchRequest struct {
	Keywords []string    `json:"keywords"`
	Target   *api.Target `json:"target,omitempty"`
	// Kinds limits the fetch to some of serp, volume, kd, intent. Empty means all.
	Kinds []string `json:"kinds,omitempty"`
}

type FetchResponse struct {
	Keywords  int                `json:"keywords"`
	Complete  bool               `json:"complete"`
	Summaries []*fetcher.Summary `json:"summaries"`
}

type ClusterRequest struct {
	Keywords         []string    `json:"keywords"`
	Target           *api.Target `json:"target,omitempty"`
	Algorithm        string      `json:"algorithm,omitempty"`
	Strategy         string      `json:"strategy,omitempty"`
	MinIntersections *int        `json:"min_intersections,omitempty"`
	URLsToCheck      *int        `json:"urls_to_check,omitempty"`
	// AllowPartial clusters the keywords that have SERP data instead of
	// failing with the missing list.
	AllowPartial bool `json:"allow_partial,omitempty"`
}

type CacheEntry struct {
	Key      string          `json:"key"`
	StoredAt time.Time       `json:"stored_at"`
	Value    json.RawMessage `json:"value"`
}

type StatusResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Metrics   map[string]interface{} `json:"metrics"`
	Health    map[string]bool        `json:"health"`
}

// FetchService fills the cache from the API.
type FetchService interface {
	Fetch(ctx context.Context, req FetchRequest) (*FetchResponse, error)
}

// ClusterService builds reports from cached data only.
type ClusterService interface {
	Cluster(ctx context.Context, req ClusterRequest) (*report.Report, error)
}

type CacheService interface {
	Inspect(ctx context.Context, key string) (*CacheEntry, error)
	ClearCache(ctx context.Context) (int, error)
}

type MonitorService interface {
	Status(ctx context.Context) (*StatusResponse, error)
}

// Service is everything the HTTP server and the CLI call.
type Service interface {
	FetchService
	ClusterService
	CacheService
	MonitorService
}

// DatasetLoader reads clustering input from the cache.
type DatasetLoader interface {
	Load(ctx context.Context, keywords []string, target api.Target, urlsToCheck int) (*dataset.Dataset, error)
}
