package fetcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"seo-cluster/pkg/api"
	"seo-cluster/pkg/storage"
)

type liveCall func(ctx context.Context, keywords []string, target api.Target) (*api.Response, error)

// FetchDifficulty caches a keyword difficulty response per keyword.
func (f *BulkFetcher) FetchDifficulty(ctx context.Context, keywords []string, target api.Target) (*Summary, error) {
	var call liveCall
	if f.client != nil {
		call = f.client.KeywordDifficulty
	}
	return f.fetchLive(ctx, storage.KindDifficulty, "KD", call, keywords, target)
}

// FetchIntent caches a search intent response per keyword.
func (f *BulkFetcher) FetchIntent(ctx context.Context, keywords []string, target api.Target) (*Summary, error) {
	var call liveCall
	if f.client != nil {
		call = f.client.SearchIntent
	}
	return f.fetchLive(ctx, storage.KindIntent, "Intent", call, keywords, target)
}

// fetchLive issues one live request per missing keyword, Concurrency at a
// time. Only responses whose task succeeded are cached.
func (f *BulkFetcher) fetchLive(ctx context.Context, kind storage.Kind, label string, call liveCall, keywords []string, target api.Target) (*Summary, error) {
	start := time.Now()
	summary, misses := f.partition(ctx, kind, keywords, target)
	defer func() { summary.Duration = time.Since(start).Round(time.Millisecond).String() }()

	if len(misses) == 0 {
		return summary, nil
	}
	if call == nil {
		return summary, api.ErrNoCredentials
	}

	var (
		mu   sync.Mutex
		done int
	)
	finish := func(kw string, ok bool) {
		mu.Lock()
		defer mu.Unlock()
		if ok {
			summary.Fetched = append(summary.Fetched, kw)
		} else {
			summary.Failed = append(summary.Failed, kw)
		}
		done++
		f.report(done, len(misses), fmt.Sprintf("%s: %d/%d complete", label, done, len(misses)))
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)
	for _, kw := range misses {
		kw := kw
		g.Go(func() error {
			resp, err := call(gCtx, []string{kw}, target)
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				f.log.WithError(err).WithFields(map[string]interface{}{"kind": kind, "keyword": kw}).Warn("Live request failed")
				finish(kw, false)
				return nil
			}
			if len(resp.Tasks) == 0 || resp.Tasks[0].StatusCode != api.StatusOK {
				f.log.WithFields(map[string]interface{}{"kind": kind, "keyword": kw}).Warn("Live request returned no successful task")
				finish(kw, false)
				return nil
			}
			finish(kw, f.store(gCtx, kind, kw, target, resp.Raw) == nil)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}
	f.log.WithFields(map[string]interface{}{
		"kind":    kind,
		"fetched": len(summary.Fetched),
		"failed":  len(summary.Failed),
	}).Info("Live fetch completed")
	return summary, nil
}
