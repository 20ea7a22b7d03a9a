package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const createPostgresCacheTable = `
	CREATE TABLE IF NOT EXISTS cache_entries (
		key         TEXT PRIMARY KEY,
		body        BYTEA NOT NULL,
		captured_at TIMESTAMPTZ NOT NULL
	)
`

const createSQLiteCacheTable = `
	CREATE TABLE IF NOT EXISTS cache_entries (
		key         TEXT PRIMARY KEY,
		body        BLOB NOT NULL,
		captured_at INTEGER NOT NULL
	)
`

// NewDB opens a PostgreSQL connection and ensures the cache schema exists
func NewDB(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres cache store requires a DSN")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(createPostgresCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return db, nil
}

// NewSQLiteDB opens (or creates) a SQLite database file and ensures the cache schema exists
func NewSQLiteDB(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite cache store requires a file path")
	}

	// Ensure the directory exists
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serialises writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createSQLiteCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return db, nil
}
