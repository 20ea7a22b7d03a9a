package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jjenkins/adressen/internal/model"
)

// PostgresStore handles cache entry persistence in PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get retrieves the cache entry for a request key
func (s *PostgresStore) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	query := `
		SELECT key, body, captured_at
		FROM cache_entries
		WHERE key = $1
	`

	var e model.CacheEntry
	err := s.db.QueryRowContext(ctx, query, key).Scan(&e.Key, &e.Body, &e.CapturedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry %s: %w", key, err)
	}

	return &e, nil
}

// Put inserts or replaces the cache entry for its key
func (s *PostgresStore) Put(ctx context.Context, e *model.CacheEntry) error {
	query := `
		INSERT INTO cache_entries (key, body, captured_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			body = EXCLUDED.body,
			captured_at = EXCLUDED.captured_at
	`

	if _, err := s.db.ExecContext(ctx, query, e.Key, e.Body, e.CapturedAt.UTC()); err != nil {
		return fmt.Errorf("failed to store cache entry %s: %w", e.Key, err)
	}

	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// SQLiteStore handles cache entry persistence in a local SQLite file.
// Timestamps are stored as Unix nanoseconds.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves the cache entry for a request key
func (s *SQLiteStore) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	query := `
		SELECT key, body, captured_at
		FROM cache_entries
		WHERE key = ?
	`

	var e model.CacheEntry
	var capturedAt int64
	err := s.db.QueryRowContext(ctx, query, key).Scan(&e.Key, &e.Body, &capturedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry %s: %w", key, err)
	}
	e.CapturedAt = time.Unix(0, capturedAt).UTC()

	return &e, nil
}

// Put inserts or replaces the cache entry for its key
func (s *SQLiteStore) Put(ctx context.Context, e *model.CacheEntry) error {
	query := `
		INSERT INTO cache_entries (key, body, captured_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			body = excluded.body,
			captured_at = excluded.captured_at
	`

	if _, err := s.db.ExecContext(ctx, query, e.Key, e.Body, e.CapturedAt.UnixNano()); err != nil {
		return fmt.Errorf("failed to store cache entry %s: %w", e.Key, err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
