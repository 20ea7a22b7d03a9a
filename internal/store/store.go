package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jjenkins/adressen/internal/model"
)

// Supported cache store kinds
const (
	KindMemory   = "memory"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
)

// CacheStore persists at most one response body per request key.
// Get returns (nil, nil) when no entry exists for the key.
type CacheStore interface {
	Get(ctx context.Context, key string) (*model.CacheEntry, error)
	Put(ctx context.Context, entry *model.CacheEntry) error
	Close() error
}

// Open creates the cache store selected by kind
func Open(kind, dsn string) (CacheStore, error) {
	switch strings.ToLower(kind) {
	case "", KindMemory:
		return NewMemoryStore(), nil
	case KindSQLite:
		db, err := NewSQLiteDB(dsn)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(db), nil
	case KindPostgres:
		db, err := NewDB(dsn)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(db), nil
	default:
		return nil, fmt.Errorf("unknown cache store %q (want memory, sqlite or postgres)", kind)
	}
}
