// Package httpx executes HTTP GET calls with retry, backoff, and a
// time-bounded response cache. It has no knowledge of domain types.
package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dkelsall/piefolio/internal/cache"
	"github.com/dkelsall/piefolio/internal/common"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultCacheTTL = common.FreshnessResponse
	DefaultRetries  = 3
	DefaultBackoff  = 1 * time.Second
)

// APIError represents a non-2xx response after retries were exhausted.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Client issues GET requests under retry/backoff and caching discipline.
type Client struct {
	httpClient     *http.Client
	store          cache.Store
	cacheTTL       time.Duration
	maxRetries     int
	initialBackoff time.Duration
	logger         *common.Logger
}

// Option configures the client
type Option func(*Client)

// WithCache sets the response cache store and TTL
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(c *Client) {
		c.store = store
		c.cacheTTL = ttl
	}
}

// WithRetries sets the retry budget (extra attempts after the first) and
// the initial backoff delay, which doubles per attempt.
func WithRetries(maxRetries int, initialBackoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.initialBackoff = initialBackoff
	}
}

// WithTimeout sets the per-attempt HTTP timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new resilient HTTP client
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		store:          cache.NewMemory(),
		cacheTTL:       DefaultCacheTTL,
		maxRetries:     DefaultRetries,
		initialBackoff: DefaultBackoff,
		logger:         common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// cacheKey identifies a request by method, URL, and an optional scope
// (per-user partition), so concurrent refreshes never share credentials'
// responses.
func cacheKey(url, scope string) string {
	if scope == "" {
		return "GET " + url
	}
	return "GET " + url + "|" + scope
}

// Get executes a GET request. A cache hit within TTL short-circuits with no
// network call. On failure the call is retried with exponentially doubling
// delays up to maxRetries extra attempts; exhausting them returns the last
// error, which callers treat as "data unavailable for this cycle".
func (c *Client) Get(ctx context.Context, url string, header http.Header, scope string) ([]byte, error) {
	return c.GetWithTTL(ctx, url, header, scope, c.cacheTTL)
}

// GetWithTTL is Get with a per-call cache TTL, for callers whose data ages
// at a different rate than the client default (catalogues, daily history).
func (c *Client) GetWithTTL(ctx context.Context, url string, header http.Header, scope string, ttl time.Duration) ([]byte, error) {
	key := cacheKey(url, scope)

	if body, ok := c.store.Get(key); ok {
		c.logger.Debug().Str("url", url).Msg("Response cache hit")
		return body, nil
	}

	delay := c.initialBackoff
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug().
				Str("url", url).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying request")
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
			delay *= 2
		}

		body, err := c.do(ctx, url, header)
		if err == nil {
			c.store.Set(key, body, ttl)
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) do(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   url,
		}
	}

	return body, nil
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
