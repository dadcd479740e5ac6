package connector

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"fjacquet/ledger-sync/internal/logging"
)

// Default HTTP behavior shared by all connectors. A per-call timeout is
// mandatory so one unresponsive provider cannot stall an entire run.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 500 * time.Millisecond
)

// APIError represents a non-2xx response from a provider API.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsRetryable returns true if the response should trigger a page retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// HTTPClient wraps net/http with auth header injection, a per-call
// timeout and bounded retry with backoff and jitter for transient page
// failures. Retries stay inside the connector; an exhausted retry fails
// the whole fetch rather than returning partial results.
type HTTPClient struct {
	baseURL      string
	authHeader   string
	authValue    string
	httpClient   *http.Client
	maxRetries   int
	retryBackoff time.Duration
	log          logging.Logger
}

// HTTPClientOption configures an HTTPClient.
type HTTPClientOption func(*HTTPClient)

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) HTTPClientOption {
	return func(c *HTTPClient) { c.httpClient.Timeout = d }
}

// WithMaxRetries overrides the bounded page-retry count.
func WithMaxRetries(n int) HTTPClientOption {
	return func(c *HTTPClient) { c.maxRetries = n }
}

// WithRetryBackoff overrides the initial retry backoff.
func WithRetryBackoff(d time.Duration) HTTPClientOption {
	return func(c *HTTPClient) { c.retryBackoff = d }
}

// NewHTTPClient creates a client for a provider API. authHeader/authValue
// are sent on every request, e.g. ("Authorization", "Bearer sk_...").
func NewHTTPClient(baseURL, authHeader, authValue string, logger logging.Logger, opts ...HTTPClientOption) *HTTPClient {
	if logger == nil {
		logger = logging.GetLogger()
	}
	c := &HTTPClient{
		baseURL:      baseURL,
		authHeader:   authHeader,
		authValue:    authValue,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		maxRetries:   DefaultMaxRetries,
		retryBackoff: DefaultRetryBackoff,
		log:          logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET request against the provider with bounded retry on
// transient failures and returns the raw response body.
func (c *HTTPClient) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Jitter: backoff * (0.5 to 1.5).
			jitter := backoff/2 + time.Duration(rand.Int64N(int64(backoff)))
			c.log.Debug("retrying provider request",
				logging.F(logging.FieldAttempt, attempt),
				logging.F("backoff", jitter.String()),
				logging.F("path", path))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(jitter):
			}
			backoff *= 2
		}

		body, err := c.get(ctx, path, query)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if apiErr, ok := err.(*APIError); ok && !apiErr.IsRetryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", c.maxRetries, lastErr)
}

func (c *HTTPClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.authHeader != "" {
		req.Header.Set(c.authHeader, c.authValue)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.WithError(err).Warn("failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: body}
	}
	return body, nil
}
