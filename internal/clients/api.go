// Package clients holds the HTTP plumbing shared by the upstream data clients.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds each upstream request
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is requests per second per upstream
	DefaultRateLimit = 2

	// DefaultUserAgent is sent with every request
	DefaultUserAgent = "portfolio-tracker/1.0"

	maxErrorBody = 512
)

// APIError represents a non-2xx response from an upstream API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// HTTP performs rate-limited GET requests against one upstream.
type HTTP struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	log        zerolog.Logger
}

// Option configures an HTTP upstream.
type Option func(*HTTP)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(h *HTTP) {
		h.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(h *HTTP) {
		h.httpClient = &http.Client{Timeout: timeout}
	}
}

// WithRateLimit sets a custom rate limit. requestsPerSecond <= 0 disables limiting.
func WithRateLimit(requestsPerSecond int) Option {
	return func(h *HTTP) {
		if requestsPerSecond <= 0 {
			h.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		h.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(h *HTTP) {
		h.userAgent = userAgent
	}
}

// NewHTTP creates an upstream HTTP helper.
func NewHTTP(log zerolog.Logger, opts ...Option) *HTTP {
	h := &HTTP{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		userAgent:  DefaultUserAgent,
		log:        log,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Get fetches endpoint and returns the response body.
func (h *HTTP) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	reqURL := endpoint
	if len(params) > 0 {
		reqURL = endpoint + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)

	h.log.Debug().Str("url", endpoint).Msg("Upstream request")

	start := time.Now()
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   endpoint,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	h.log.Debug().
		Str("url", endpoint).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Upstream response")

	return body, nil
}

// GetJSON fetches endpoint and decodes the JSON body into result.
func (h *HTTP) GetJSON(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	body, err := h.Get(ctx, endpoint, params)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return nil
}
