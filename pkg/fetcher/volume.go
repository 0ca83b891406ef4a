package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"seo-cluster/pkg/api"
	"seo-cluster/pkg/keyword"
	"seo-cluster/pkg/storage"
)

// volumeTaskLimit is the most keywords one search volume task accepts.
const volumeTaskLimit = 1000

// FetchVolume posts all missing keywords in one search volume task and
// caches each returned item under its own key.
func (f *BulkFetcher) FetchVolume(ctx context.Context, keywords []string, target api.Target) (*Summary, error) {
	start := time.Now()
	summary, misses := f.partition(ctx, storage.KindVolume, keywords, target)
	defer func() { summary.Duration = time.Since(start).Round(time.Millisecond).String() }()

	if len(misses) == 0 {
		return summary, nil
	}
	if f.client == nil {
		return summary, api.ErrNoCredentials
	}

	for i := 0; i < len(misses); i += volumeTaskLimit {
		end := i + volumeTaskLimit
		if end > len(misses) {
			end = len(misses)
		}
		if err := f.fetchVolumeTask(ctx, misses[i:end], target, summary); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (f *BulkFetcher) fetchVolumeTask(ctx context.Context, batch []string, target api.Target, summary *Summary) error {
	resp, err := f.client.PostSearchVolumeTask(ctx, batch, target)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.log.WithError(err).WithField("keywords", len(batch)).Error("Failed to post search volume task")
		summary.Failed = append(summary.Failed, batch...)
		return nil
	}
	ids := resp.TaskIDs()
	if len(ids) == 0 || ids[0] == "" {
		f.log.WithField("status", resp.StatusMessage).Error("Search volume task was not created")
		summary.Failed = append(summary.Failed, batch...)
		return nil
	}
	taskID := ids[0]
	f.log.WithField("task_id", taskID).Info("Posted search volume task")

	deadline := time.Now().Add(f.opts.VolumeTimeout)
	for {
		result, err := f.client.GetSearchVolumeTask(ctx, taskID)
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil && api.ClassifyError(err) == api.ErrorSeverityFatal:
			f.log.WithError(err).WithField("task_id", taskID).Error("Search volume task failed")
			summary.Failed = append(summary.Failed, batch...)
			return nil
		case err == nil && result.Ready():
			f.storeVolumeItems(ctx, batch, taskID, result, target, summary)
			return nil
		case err == nil && len(result.Tasks) > 0 && result.Tasks[0].Failed():
			f.log.WithField("status", result.Tasks[0].StatusCode).Error("Search volume task rejected")
			summary.Failed = append(summary.Failed, batch...)
			return nil
		}

		if !time.Now().Before(deadline) {
			f.log.WithField("task_id", taskID).Error("Search volume task timed out")
			summary.TimedOut = append(summary.TimedOut, batch...)
			return nil
		}
		if err := sleep(ctx, f.opts.VolumePollInterval); err != nil {
			return err
		}
	}
}

// storeVolumeItems wraps every result item in its own envelope so that the
// cache holds one volume response per keyword.
func (f *BulkFetcher) storeVolumeItems(ctx context.Context, batch []string, taskID string, result *api.Response, target api.Target, summary *Summary) {
	wanted := make(map[string]bool, len(batch))
	for _, kw := range batch {
		wanted[kw] = true
	}

	for _, raw := range result.Tasks[0].Result {
		var item api.VolumeItem
		if err := json.Unmarshal(raw, &item); err != nil {
			f.log.WithError(err).Warn("Skipping malformed search volume item")
			continue
		}
		kw := keyword.Normalize(item.Keyword)
		if !wanted[kw] {
			continue
		}
		delete(wanted, kw)

		wrapped, err := json.Marshal(api.Envelope{
			StatusCode:    api.StatusOK,
			StatusMessage: "Ok.",
			Tasks: []api.Task{{
				ID:         taskID,
				StatusCode: api.StatusOK,
				Result:     []json.RawMessage{raw},
			}},
		})
		if err != nil {
			summary.Failed = append(summary.Failed, kw)
			continue
		}
		if err := f.store(ctx, storage.KindVolume, kw, target, wrapped); err != nil {
			summary.Failed = append(summary.Failed, kw)
			continue
		}
		summary.Fetched = append(summary.Fetched, kw)
	}

	for _, kw := range batch {
		if wanted[kw] {
			summary.Failed = append(summary.Failed, kw)
		}
	}

	f.log.WithFields(map[string]interface{}{
		"fetched": len(summary.Fetched),
		"missing": len(batch) - len(summary.Fetched),
	}).Info("Search volume task completed")
	f.report(len(summary.Fetched), summary.Requested-len(summary.CacheHits),
		fmt.Sprintf("Volume: %d keywords complete", len(summary.Fetched)))
}
