package fetcher

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"seo-cluster/pkg/api"
	"seo-cluster/pkg/storage"
)

// AllKinds is the order data kinds are reported in.
var AllKinds = []storage.Kind{storage.KindSERP, storage.KindVolume, storage.KindDifficulty, storage.KindIntent}

// FetchAll runs the requested kinds concurrently. An empty kinds list
// fetches everything.
func (f *BulkFetcher) FetchAll(ctx context.Context, keywords []string, target api.Target, kinds ...storage.Kind) ([]*Summary, error) {
	if len(kinds) == 0 {
		kinds = AllKinds
	}

	var (
		mu        sync.Mutex
		summaries = make(map[storage.Kind]*Summary, len(kinds))
	)
	g, gCtx := errgroup.WithContext(ctx)
	for _, kind := range kinds {
		fetch, err := f.fetchFuncFor(kind)
		if err != nil {
			return nil, err
		}
		kind := kind
		g.Go(func() error {
			s, err := fetch(gCtx, keywords, target)
			if s != nil {
				mu.Lock()
				summaries[kind] = s
				mu.Unlock()
			}
			if err != nil {
				return fmt.Errorf("fetch %s: %w", kind, err)
			}
			return nil
		})
	}
	err := g.Wait()

	out := make([]*Summary, 0, len(summaries))
	for _, kind := range AllKinds {
		if s, ok := summaries[kind]; ok {
			out = append(out, s)
		}
	}
	return out, err
}

func (f *BulkFetcher) fetchFuncFor(kind storage.Kind) (func(context.Context, []string, api.Target) (*Summary, error), error) {
	switch kind {
	case storage.KindSERP:
		return f.FetchSERP, nil
	case storage.KindVolume:
		return f.FetchVolume, nil
	case storage.KindDifficulty:
		return f.FetchDifficulty, nil
	case storage.KindIntent:
		return f.FetchIntent, nil
	}
	return nil, fmt.Errorf("unknown data kind %q", kind)
}

// ParseKinds maps names such as "serp" or "kd" to kinds.
func ParseKinds(names []string) ([]storage.Kind, error) {
	kinds := make([]storage.Kind, 0, len(names))
	for _, name := range names {
		switch storage.Kind(name) {
		case storage.KindSERP, storage.KindVolume, storage.KindDifficulty, storage.KindIntent:
			kinds = append(kinds, storage.Kind(name))
		case "difficulty":
			kinds = append(kinds, storage.KindDifficulty)
		default:
			return nil, fmt.Errorf("unknown data kind %q", name)
		}
	}
	return kinds, nil
}
