package storage

import (
	"context"
	"fmt"
	"strings"

	"seo-cluster/pkg/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Open returns the configured cache. SQL drivers get an in-memory LRU in
// front when MemoryCacheSize is positive.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	var (
		back Cache
		err  error
	)

	switch strings.ToLower(cfg.Driver) {
	case DriverSQLite, "sqlite3", "":
		path := cfg.Path
		if path == "" {
			path = "data/seo_app_cache.db"
		}
		back, err = NewSQLiteCache(ctx, path)
	case DriverPostgres, "postgresql":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres cache requires a dsn")
		}
		back, err = NewPostgresCache(ctx, cfg.DSN)
	case DriverMemory:
		return NewMemoryCacheWithTTL(cfg.MemoryCacheSize, cfg.MemoryTTL), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"component":   "storage",
		"driver":      cfg.Driver,
		"memory_size": cfg.MemoryCacheSize,
	}).Debug("Cache opened")

	if cfg.MemoryCacheSize <= 0 {
		return back, nil
	}
	return NewLayeredCache(NewMemoryCacheWithTTL(cfg.MemoryCacheSize, cfg.MemoryTTL), back), nil
}
