package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"seo-cluster/pkg/logger"
)

// dialect holds the driver specific statements for the cache table.
type dialect struct {
	name    string
	schema  []string
	get     string
	upsert  string
	del     string
	clear   string
	keys    string
}

// sqlCache implements Cache on database/sql. The table layout is shared by
// every driver: cache(key, response_json, timestamp).
type sqlCache struct {
	db      *sql.DB
	dialect dialect
	logger  *logger.Logger
}

func newSQLCache(ctx context.Context, db *sql.DB, d dialect) (*sqlCache, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s cache: %w", d.name, err)
	}
	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create %s cache table: %w", d.name, err)
		}
	}
	return &sqlCache{
		db:      db,
		dialect: d,
		logger:  logger.GetLogger().WithField("component", d.name+"_cache"),
	}, nil
}

func (c *sqlCache) Get(ctx context.Context, key string, maxAge time.Duration) ([]byte, error) {
	return getFresh(ctx, c, key, maxAge)
}

func (c *sqlCache) Lookup(ctx context.Context, key string) (Entry, error) {
	var (
		value    string
		storedAt time.Time
	)
	row := c.db.QueryRowContext(ctx, c.dialect.get, key)
	if err := row.Scan(&value, &storedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("failed to read cache key %q: %w", key, err)
	}
	return Entry{Key: key, Value: []byte(value), StoredAt: storedAt.UTC()}, nil
}

func (c *sqlCache) Set(ctx context.Context, key string, value []byte) error {
	if _, err := c.db.ExecContext(ctx, c.dialect.upsert, key, string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write cache key %q: %w", key, err)
	}
	c.logger.WithField("key", key).Debug("Cache updated")
	return nil
}

func (c *sqlCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, c.dialect.del, key); err != nil {
		return fmt.Errorf("failed to delete cache key %q: %w", key, err)
	}
	return nil
}

func (c *sqlCache) Clear(ctx context.Context) error {
	res, err := c.db.ExecContext(ctx, c.dialect.clear)
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		c.logger.WithField("rows", n).Info("Cache cleared")
	}
	return nil
}

func (c *sqlCache) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, c.dialect.keys, likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list cache keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (c *sqlCache) Close() error {
	return c.db.Close()
}

// likePrefix escapes LIKE wildcards; statements use ESCAPE '\'.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
