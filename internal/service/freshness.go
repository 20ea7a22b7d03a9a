package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/jjenkins/adressen/internal/model"
	"github.com/jjenkins/adressen/internal/store"
)

// DefaultStalenessWindow is how long a cached response is reused
const DefaultStalenessWindow = 7 * 24 * time.Hour

// ErrFetchUnavailable is returned when the fetch failed and nothing usable is cached
var ErrFetchUnavailable = errors.New("address data unavailable")

// CacheResult is the outcome of a FreshnessCache lookup
type CacheResult struct {
	Entry *model.CacheEntry
	// FromCache is set when the stored entry was returned without a fetch.
	FromCache bool
	// Stale is set when the fetch failed and an outdated entry was returned.
	Stale bool
}

// FreshnessCache returns response bodies from a CacheStore while they are
// younger than the staleness window and refetches them otherwise
type FreshnessCache struct {
	store    store.CacheStore
	fetcher  Fetcher
	window   time.Duration
	logger   *log.Logger
	now      func() time.Time
	validate func([]byte) error

	inflight singleflight.Group
}

// FreshnessOption configures a FreshnessCache
type FreshnessOption func(*FreshnessCache)

// WithClock overrides the time source
func WithClock(now func() time.Time) FreshnessOption {
	return func(c *FreshnessCache) { c.now = now }
}

// WithLogger sets the logger; it defaults to log.Default()
func WithLogger(logger *log.Logger) FreshnessOption {
	return func(c *FreshnessCache) { c.logger = logger }
}

// WithValidator rejects fetched bodies before they are stored. A rejected
// body is handled like a failed fetch.
func WithValidator(validate func(body []byte) error) FreshnessOption {
	return func(c *FreshnessCache) { c.validate = validate }
}

// NewFreshnessCache creates a FreshnessCache over the given store and fetcher.
// A window of zero or less disables reuse: every Get fetches.
func NewFreshnessCache(s store.CacheStore, fetcher Fetcher, window time.Duration, opts ...FreshnessOption) *FreshnessCache {
	c := &FreshnessCache{
		store:   s,
		fetcher: fetcher,
		window:  window,
		logger:  log.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Window returns the staleness window
func (c *FreshnessCache) Window() time.Duration {
	return c.window
}

// Get returns a usable body for key. Concurrent calls for the same key share
// a single lookup and at most one fetch. A caller whose ctx ends stops
// waiting, but the shared fetch runs on for the others.
func (c *FreshnessCache) Get(ctx context.Context, key string) (*CacheResult, error) {
	ch := c.inflight.DoChan(key, func() (interface{}, error) {
		return c.resolve(context.WithoutCancel(ctx), key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug("joined in-flight lookup", "key", key)
		}
		return res.Val.(*CacheResult), nil
	}
}

func (c *FreshnessCache) resolve(ctx context.Context, key string) (*CacheResult, error) {
	cached, err := c.store.Get(ctx, key)
	if err != nil {
		// An unreadable store is treated like an empty one.
		c.logger.Warn("cache store read failed", "key", key, "err", err)
		cached = nil
	}

	now := c.now()
	if c.window > 0 && cached != nil && cached.Age(now) < c.window {
		c.logger.Debug("cache hit", "key", key, "age", cached.Age(now))
		return &CacheResult{Entry: cached, FromCache: true}, nil
	}

	c.logger.Info("fetching", "key", key)
	resp, err := c.fetcher.Fetch(ctx, key)
	if err == nil && c.validate != nil {
		err = c.validate(resp.Body)
	}
	if err != nil {
		if cached != nil {
			c.logger.Warn("fetch failed, serving stale entry", "key", key, "age", cached.Age(now), "err", err)
			return &CacheResult{Entry: cached, FromCache: true, Stale: true}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrFetchUnavailable, err)
	}

	entry := &model.CacheEntry{
		Key:        key,
		Body:       resp.Body,
		CapturedAt: resp.LastModified,
	}
	if entry.CapturedAt.IsZero() {
		entry.CapturedAt = now
	}

	if err := c.store.Put(ctx, entry); err != nil {
		// The fresh body is still usable for this call.
		c.logger.Warn("cache store write failed", "key", key, "err", err)
	}

	return &CacheResult{Entry: entry}, nil
}
