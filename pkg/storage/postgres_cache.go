package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

var postgresDialect = dialect{
	name: "postgres",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS cache (
			key TEXT PRIMARY KEY,
			response_json TEXT NOT NULL,
			"timestamp" TIMESTAMPTZ NOT NULL
		)`,
	},
	get: `SELECT response_json, "timestamp" FROM cache WHERE key = $1`,
	upsert: `INSERT INTO cache (key, response_json, "timestamp") VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			response_json = EXCLUDED.response_json,
			"timestamp" = EXCLUDED."timestamp"`,
	del:   `DELETE FROM cache WHERE key = $1`,
	clear: `DELETE FROM cache`,
	keys:  `SELECT key FROM cache WHERE key LIKE $1 ESCAPE '\' ORDER BY key`,
}

type PostgresCache struct {
	*sqlCache
}

func NewPostgresCache(ctx context.Context, dsn string) (*PostgresCache, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres cache: %w", err)
	}

	c, err := newSQLCache(ctx, db, postgresDialect)
	if err != nil {
		return nil, err
	}
	return &PostgresCache{sqlCache: c}, nil
}
