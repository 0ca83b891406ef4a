package config

import (
	"time"

	"seo-cluster/pkg/api"
	"seo-cluster/pkg/cluster"
	"seo-cluster/pkg/fetcher"
	"seo-cluster/pkg/logger"
	"seo-cluster/pkg/storage"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	API        api.Config       `mapstructure:"api"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Target     api.Target       `mapstructure:"target"`
	Clustering ClusteringConfig `mapstructure:"clustering"`
	Fetch      FetchConfig      `mapstructure:"fetch"`
	Logger     logger.Config    `mapstructure:"logger"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StorageConfig struct {
	storage.Config `mapstructure:",squash"`
	// KeyTemplates overrides cache key layouts per kind (serp, volume, kd, intent).
	KeyTemplates map[string]string `mapstructure:"key_templates"`
}

type ClusteringConfig struct {
	Algorithm        string `mapstructure:"algorithm"`
	TieBreak         string `mapstructure:"tie_break"`
	MinIntersections int    `mapstructure:"min_intersections"`
	URLsToCheck      int    `mapstructure:"urls_to_check"`
}

type FetchConfig struct {
	fetcher.Options `mapstructure:",squash"`
	// CacheMaxAgeDays bounds the age of cached responses; -1 keeps them forever.
	CacheMaxAgeDays int `mapstructure:"cache_max_age_days"`
}

type Manager interface {
	Load(configPath string) (*Config, error)
	Reload() error
	GetConfig() *Config
}

// MaxAge converts CacheMaxAgeDays into a cache freshness bound.
func (f FetchConfig) MaxAge() time.Duration {
	if f.CacheMaxAgeDays < 0 {
		return storage.Forever
	}
	return time.Duration(f.CacheMaxAgeDays) * 24 * time.Hour
}

// FetcherOptions returns the fetcher settings with MaxAge applied.
func (c *Config) FetcherOptions() fetcher.Options {
	opts := c.Fetch.Options
	opts.MaxAge = c.Fetch.MaxAge()
	return opts
}

// ClusterOptions parses the clustering section. Metrics are filled in by
// the caller from the loaded dataset.
func (c *Config) ClusterOptions() (cluster.Options, error) {
	algo, err := cluster.ParseAlgorithm(c.Clustering.Algorithm)
	if err != nil {
		return cluster.Options{}, err
	}
	tieBreak, err := cluster.ParseTieBreak(c.Clustering.TieBreak)
	if err != nil {
		return cluster.Options{}, err
	}
	return cluster.Options{
		Algorithm:        algo,
		MinIntersections: c.Clustering.MinIntersections,
		URLsToCheck:      c.Clustering.URLsToCheck,
		TieBreak:         tieBreak,
	}, nil
}

// KeyBuilder builds the cache key renderer from the configured templates.
func (c *Config) KeyBuilder() (*storage.KeyBuilder, error) {
	overrides := make(map[storage.Kind]string, len(c.Storage.KeyTemplates))
	for kind, tpl := range c.Storage.KeyTemplates {
		overrides[storage.Kind(kind)] = tpl
	}
	return storage.NewKeyBuilder(overrides)
}
