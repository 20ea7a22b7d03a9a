package service

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jjenkins/adressen/internal/model"
	"github.com/jjenkins/adressen/internal/table"
)

// Loader resolves the address list and reports the outcome as a table event.
// Errors never escape: they are logged and turned into table.DataFailed.
type Loader struct {
	cache    *FreshnessCache
	endpoint string
	logger   *log.Logger

	mu         sync.Mutex
	parsedAt   time.Time
	parsedBody []byte
	parsed     []model.Address
}

// NewLoader creates a Loader for endpoint
func NewLoader(cache *FreshnessCache, endpoint string, logger *log.Logger) *Loader {
	return &Loader{
		cache:    cache,
		endpoint: endpoint,
		logger:   logger,
	}
}

// Endpoint returns the URL the loader reads from
func (l *Loader) Endpoint() string {
	return l.endpoint
}

// Load returns table.DataLoaded or table.DataFailed
func (l *Loader) Load(ctx context.Context) table.Msg {
	res, err := l.cache.Get(ctx, l.endpoint)
	if err != nil {
		l.logger.Error("failed to load addresses", "endpoint", l.endpoint, "err", err)
		return table.DataFailed{Err: err}
	}

	records, err := l.parse(res.Entry)
	if err != nil {
		l.logger.Error("failed to parse addresses", "endpoint", l.endpoint, "err", err)
		return table.DataFailed{Err: err}
	}

	l.logger.Debug("addresses loaded",
		"records", len(records),
		"captured_at", res.Entry.CapturedAt,
		"from_cache", res.FromCache,
		"stale", res.Stale,
	)

	return table.DataLoaded{
		Records:    records,
		CapturedAt: res.Entry.CapturedAt,
		FromCache:  res.FromCache,
		Stale:      res.Stale,
	}
}

// parse decodes entry, reusing the previous result when the same capture is
// loaded again
func (l *Loader) parse(entry *model.CacheEntry) ([]model.Address, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.parsed != nil && l.parsedAt.Equal(entry.CapturedAt) && bytes.Equal(l.parsedBody, entry.Body) {
		return l.parsed, nil
	}

	records, err := ParseAddresses(entry.Body)
	if err != nil {
		return nil, err
	}

	l.parsedAt = entry.CapturedAt
	l.parsedBody = entry.Body
	l.parsed = records
	return records, nil
}
