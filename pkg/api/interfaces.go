package api

import "context"

// DataForSEO is the subset of the API the fetcher needs.
type DataForSEO interface {
	PostSERPTasks(ctx context.Context, keywords []string, target Target) (*Response, error)
	GetSERPTask(ctx context.Context, id string) (*Response, error)
	PostSearchVolumeTask(ctx context.Context, keywords []string, target Target) (*Response, error)
	GetSearchVolumeTask(ctx context.Context, id string) (*Response, error)
	KeywordDifficulty(ctx context.Context, keywords []string, target Target) (*Response, error)
	SearchIntent(ctx context.Context, keywords []string, target Target) (*Response, error)
}

var _ DataForSEO = (*Client)(nil)
