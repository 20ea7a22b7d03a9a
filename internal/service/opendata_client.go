package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultEndpoint is the Rostock open-data address list
	DefaultEndpoint = "https://geo.sv.rostock.de/download/opendata/adressenliste/adressenliste.json"

	defaultTimeout = 60 * time.Second
	maxRetries     = 3
	initialBackoff = 2 * time.Second
)

// FetchResponse is the body of a successful fetch plus the source's
// Last-Modified time, which is zero when the server did not send one
type FetchResponse struct {
	Body         []byte
	LastModified time.Time
}

// Fetcher retrieves the raw body behind a URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResponse, error)
}

// OpenDataClient handles communication with the open-data portal
type OpenDataClient struct {
	client  *http.Client
	logger  *log.Logger
	backoff time.Duration
}

// ClientOption configures an OpenDataClient
type ClientOption func(*OpenDataClient)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *OpenDataClient) { o.client = c }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(o *OpenDataClient) {
		if d > 0 {
			o.client.Timeout = d
		}
	}
}

// WithInitialBackoff sets the delay before the first retry; it doubles on each attempt
func WithInitialBackoff(d time.Duration) ClientOption {
	return func(o *OpenDataClient) { o.backoff = d }
}

// NewOpenDataClient creates a new open-data client
func NewOpenDataClient(logger *log.Logger, opts ...ClientOption) *OpenDataClient {
	c := &OpenDataClient{
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:  logger,
		backoff: initialBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs an HTTP GET with exponential backoff retry
func (c *OpenDataClient) Fetch(ctx context.Context, url string) (*FetchResponse, error) {
	var lastErr error
	backoff := c.backoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying fetch", "url", url, "attempt", attempt+1, "err", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()

		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (HTTP 429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			continue
		}

		return &FetchResponse{
			Body:         body,
			LastModified: parseLastModified(resp.Header.Get("Last-Modified")),
		}, nil
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

// parseLastModified returns the zero time for a missing or malformed header
func parseLastModified(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := http.ParseTime(v)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
