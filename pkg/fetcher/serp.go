package fetcher

import (
	"context"
	"fmt"
	"sort"
	"time"

	"seo-cluster/pkg/api"
	"seo-cluster/pkg/storage"
)

// FetchSERP makes sure an organic SERP response is cached for every
// keyword. Misses are posted in batches and then polled together until
// they complete or SERPTimeout passes.
func (f *BulkFetcher) FetchSERP(ctx context.Context, keywords []string, target api.Target) (*Summary, error) {
	start := time.Now()
	summary, misses := f.partition(ctx, storage.KindSERP, keywords, target)
	defer func() { summary.Duration = time.Since(start).Round(time.Millisecond).String() }()

	if len(misses) == 0 {
		return summary, nil
	}
	if f.client == nil {
		return summary, api.ErrNoCredentials
	}

	pending := make(map[string]string, len(misses))
	batchSize := f.opts.SERPBatchSize
	totalBatches := (len(misses) + batchSize - 1) / batchSize

	for i := 0; i < len(misses); i += batchSize {
		end := i + batchSize
		if end > len(misses) {
			end = len(misses)
		}
		batch := misses[i:end]
		batchNum := i/batchSize + 1

		resp, err := f.client.PostSERPTasks(ctx, batch, target)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			f.log.WithError(err).WithFields(map[string]interface{}{
				"batch":    batchNum,
				"keywords": len(batch),
			}).Error("Failed to post SERP batch")
			summary.Failed = append(summary.Failed, batch...)
			continue
		}

		// task ids come back in the order the keywords were posted
		ids := resp.TaskIDs()
		for j, kw := range batch {
			if j >= len(ids) || ids[j] == "" {
				summary.Failed = append(summary.Failed, kw)
				continue
			}
			pending[ids[j]] = kw
		}
		f.log.WithFields(map[string]interface{}{
			"batch":   fmt.Sprintf("%d/%d", batchNum, totalBatches),
			"posted":  len(batch),
			"pending": len(pending),
		}).Info("Posted SERP batch")
	}

	total := len(pending)
	deadline := time.Now().Add(f.opts.SERPTimeout)
	for len(pending) > 0 {
		for _, id := range sortedIDs(pending) {
			kw := pending[id]
			resp, err := f.client.GetSERPTask(ctx, id)
			if err != nil {
				if ctx.Err() != nil {
					return summary, ctx.Err()
				}
				if api.ClassifyError(err) == api.ErrorSeverityFatal {
					f.log.WithError(err).WithField("keyword", kw).Error("SERP task failed")
					summary.Failed = append(summary.Failed, kw)
					delete(pending, id)
				}
				continue
			}

			switch {
			case resp.Ready():
				delete(pending, id)
				if err := f.store(ctx, storage.KindSERP, kw, target, resp.Raw); err != nil {
					summary.Failed = append(summary.Failed, kw)
					continue
				}
				summary.Fetched = append(summary.Fetched, kw)
				f.log.WithField("keyword", kw).Debug("SERP task completed")
			case len(resp.Tasks) > 0 && resp.Tasks[0].Failed():
				delete(pending, id)
				summary.Failed = append(summary.Failed, kw)
				f.log.WithFields(map[string]interface{}{
					"keyword": kw,
					"status":  resp.Tasks[0].StatusCode,
					"message": resp.Tasks[0].StatusMessage,
				}).Warn("SERP task rejected")
			}
		}

		done := total - len(pending)
		f.report(done, total, fmt.Sprintf("SERP: %d/%d complete", done, total))

		if len(pending) == 0 || !time.Now().Before(deadline) {
			break
		}
		if err := sleep(ctx, f.opts.SERPPollInterval); err != nil {
			return summary, err
		}
	}

	if len(pending) > 0 {
		for _, id := range sortedIDs(pending) {
			summary.TimedOut = append(summary.TimedOut, pending[id])
		}
		f.log.WithFields(map[string]interface{}{
			"timed_out": len(summary.TimedOut),
			"keywords":  summary.TimedOut,
		}).Error("SERP tasks timed out")
	}

	return summary, nil
}

// sortedIDs orders pending task ids by keyword so polling is deterministic.
func sortedIDs(pending map[string]string) []string {
	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return pending[ids[i]] < pending[ids[j]] })
	return ids
}
