package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jjenkins/adressen/internal/model"
	"github.com/jjenkins/adressen/internal/store"
)

const testEndpoint = "https://example.org/adressenliste.json"

const blockwegJSON = `[{"postleitzahl":"18147","gemeindeteil_name":"Gehlsdorf","strasse_name":"Blockweg","hausnummer":"3"}]`

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// fakeFetcher returns canned responses and counts calls
type fakeFetcher struct {
	mu           sync.Mutex
	calls        int32
	body         []byte
	lastModified time.Time
	err          error
	// gate, when set, blocks every Fetch until it is closed
	gate chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context, _ string) (*FetchResponse, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &FetchResponse{Body: append([]byte(nil), f.body...), LastModified: f.lastModified}, nil
}

func (f *fakeFetcher) Calls() int {
	return int(atomic.LoadInt32(&f.calls))
}

func (f *fakeFetcher) set(body string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.body = []byte(body)
	f.err = err
}

// fakeClock is a settable time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// failingStore is a CacheStore whose reads and writes always fail
type failingStore struct{}

func (failingStore) Get(context.Context, string) (*model.CacheEntry, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) Put(context.Context, *model.CacheEntry) error {
	return errors.New("disk on fire")
}

func (failingStore) Close() error { return nil }

func newTestCache(t *testing.T, s store.CacheStore, f Fetcher, window time.Duration, clock *fakeClock, opts ...FreshnessOption) *FreshnessCache {
	t.Helper()

	opts = append([]FreshnessOption{WithClock(clock.Now), WithLogger(quietLogger())}, opts...)
	return NewFreshnessCache(s, f, window, opts...)
}
