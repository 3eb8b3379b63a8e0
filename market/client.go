// Package market resolves item names to type identifiers and looks up hub
// prices from ESI, Fuzzwork and EVEMarketer.
package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"m3calc/utils"
)

const (
	userAgent    = "m3calc/1.0"
	maxBodyBytes = 8 << 20
)

// Doer sends one HTTP request. *http.Client and *BrowserDoer implement it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("market: unexpected status %d from %s", e.StatusCode, e.URL)
}

// response is a fully read HTTP response.
type response struct {
	Header http.Header
	Body   []byte
}

// Client performs GET requests with retries on network errors and 5xx.
type Client struct {
	doer   Doer
	retry  *utils.RetryConfig
	logger *utils.Logger
}

// NewClient wraps doer. maxAttempts below 1 means a single attempt.
func NewClient(doer Doer, maxAttempts int, baseDelay time.Duration, logger *utils.Logger) *Client {
	return &Client{
		doer: doer,
		retry: &utils.RetryConfig{
			MaxAttempts: maxAttempts,
			BaseDelay:   baseDelay,
			Logger:      logger,
		},
		logger: logger,
	}
}

// NewHTTPDoer returns a plain HTTP client with the given timeout.
func NewHTTPDoer(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (c *Client) get(ctx context.Context, rawURL string) (*response, error) {
	var out *response
	err := c.retry.Do(ctx, "GET "+rawURL, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return utils.Permanent(fmt.Errorf("market: create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.doer.Do(req)
		if err != nil {
			return fmt.Errorf("market: request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return fmt.Errorf("market: read body: %w", err)
		}

		if resp.StatusCode >= 500 {
			return &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return utils.Permanent(&StatusError{URL: rawURL, StatusCode: resp.StatusCode})
		}

		out = &response{Header: resp.Header, Body: body}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
