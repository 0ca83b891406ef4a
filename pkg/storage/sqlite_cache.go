package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS cache (
			key TEXT PRIMARY KEY,
			response_json TEXT NOT NULL,
			timestamp DATETIME NOT NULL
		)`,
	},
	get:    `SELECT response_json, timestamp FROM cache WHERE key = ?`,
	upsert: `INSERT OR REPLACE INTO cache (key, response_json, timestamp) VALUES (?, ?, ?)`,
	del:    `DELETE FROM cache WHERE key = ?`,
	clear:  `DELETE FROM cache`,
	keys:   `SELECT key FROM cache WHERE key LIKE ? ESCAPE '\' ORDER BY key`,
}

type SQLiteCache struct {
	*sqlCache
	path string
}

// NewSQLiteCache opens (creating if needed) the cache database at path.
func NewSQLiteCache(ctx context.Context, path string) (*SQLiteCache, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
	}
	// sqlite serializes writers anyway
	db.SetMaxOpenConns(1)

	c, err := newSQLCache(ctx, db, sqliteDialect)
	if err != nil {
		return nil, err
	}
	return &SQLiteCache{sqlCache: c, path: path}, nil
}

func (c *SQLiteCache) Path() string {
	return c.path
}
