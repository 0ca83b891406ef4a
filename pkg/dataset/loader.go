// Package dataset assembles clustering input from cached API responses.
package dataset

import (
	"context"
	"errors"
	"time"

	"seo-cluster/pkg/api"
	"seo-cluster/pkg/cluster"
	"seo-cluster/pkg/fetcher"
	"seo-cluster/pkg/logger"
	"seo-cluster/pkg/storage"
)

// Dataset is everything known about a keyword list for one target.
type Dataset struct {
	Target api.Target `json:"target"`
	// Keywords is the requested list in order.
	Keywords []string `json:"keywords"`
	// Entries holds only keywords with a SERP response.
	Entries []cluster.Entry            `json:"entries"`
	Metrics map[string]cluster.Metrics `json:"metrics"`
	Intents map[string]string          `json:"intents"`
	// Missing lists keywords without SERP data, in request order.
	Missing []string `json:"missing"`
}

// Complete reports whether every keyword has a SERP response.
func (d *Dataset) Complete() bool {
	return len(d.Missing) == 0
}

type Loader struct {
	cache  storage.Cache
	keys   *storage.KeyBuilder
	maxAge time.Duration
	log    *logger.Logger
}

func NewLoader(cache storage.Cache, keys *storage.KeyBuilder, maxAge time.Duration) *Loader {
	if keys == nil {
		keys = storage.DefaultKeyBuilder()
	}
	return &Loader{
		cache:  cache,
		keys:   keys,
		maxAge: maxAge,
		log:    logger.GetLogger().WithField("component", "dataset_loader"),
	}
}

// Load reads SERP, volume, difficulty and intent responses from the cache.
// It never calls the API. Undecodable responses count as absent.
func (l *Loader) Load(ctx context.Context, keywords []string, target api.Target, urlsToCheck int) (*Dataset, error) {
	ds := &Dataset{
		Target:   target,
		Keywords: keywords,
		Entries:  make([]cluster.Entry, 0, len(keywords)),
		Metrics:  make(map[string]cluster.Metrics, len(keywords)),
		Intents:  make(map[string]string),
		Missing:  []string{},
	}
	scope := fetcher.ScopeOf(target)

	for _, kw := range keywords {
		raw, err := l.get(ctx, storage.KindSERP, kw, scope)
		if err != nil {
			return nil, err
		}
		urls, decodeErr := ExtractURLs(raw, urlsToCheck)
		if raw == nil || decodeErr != nil || urls == nil {
			if decodeErr != nil {
				l.log.WithError(decodeErr).WithField("keyword", kw).Warn("Unreadable SERP response")
			}
			ds.Missing = append(ds.Missing, kw)
			continue
		}
		ds.Entries = append(ds.Entries, cluster.Entry{Keyword: kw, URLs: urls})

		var m cluster.Metrics
		if raw, err = l.get(ctx, storage.KindVolume, kw, scope); err != nil {
			return nil, err
		} else if raw != nil {
			if m.Volume, m.CPC, err = ExtractVolume(raw); err != nil {
				l.log.WithError(err).WithField("keyword", kw).Warn("Unreadable volume response")
			}
		}
		if raw, err = l.get(ctx, storage.KindDifficulty, kw, scope); err != nil {
			return nil, err
		} else if raw != nil {
			if m.Difficulty, err = ExtractDifficulty(raw); err != nil {
				l.log.WithError(err).WithField("keyword", kw).Warn("Unreadable difficulty response")
			}
		}
		ds.Metrics[kw] = m

		if raw, err = l.get(ctx, storage.KindIntent, kw, scope); err != nil {
			return nil, err
		} else if raw != nil {
			intent, err := ExtractIntent(raw)
			if err != nil {
				l.log.WithError(err).WithField("keyword", kw).Warn("Unreadable intent response")
			} else if intent != "" {
				ds.Intents[kw] = intent
			}
		}
	}

	l.log.WithFields(map[string]interface{}{
		"keywords": len(keywords),
		"entries":  len(ds.Entries),
		"missing":  len(ds.Missing),
	}).Info("Dataset loaded from cache")
	return ds, nil
}

// get returns nil, nil for a missing or stale key.
func (l *Loader) get(ctx context.Context, kind storage.Kind, kw string, scope storage.Scope) ([]byte, error) {
	raw, err := l.cache.Get(ctx, l.keys.Key(kind, kw, scope), l.maxAge)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return raw, err
}
