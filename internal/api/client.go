// Package api provides the REST client for WorkFlow Pro backend services
// with bounded retries and multi-tenant auth.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// APIError is returned when a request fails after exhausting its retry
// budget, or on a non-retryable error status. Status is 0 when no
// response was received at all.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api request failed without response: %s", e.Body)
	}
	return fmt.Sprintf("api request failed with status %d: %s", e.Status, e.Body)
}

// TokenSource yields auth tokens per tenant and supports invalidation
// when the server rejects one.
type TokenSource interface {
	Token(ctx context.Context, tenantID string) (string, error)
	Invalidate(tenantID string)
}

// Doer issues HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

const (
	defaultMaxAttempts  = 3
	defaultRetryBackoff = time.Second
	requestTimeout      = 10 * time.Second
)

// Client issues authenticated REST calls with bounded exponential-backoff
// retries on transport failures and retryable statuses.
type Client struct {
	BaseURL      string
	Tokens       TokenSource
	HTTP         Doer
	Logger       *zap.Logger
	MaxAttempts  int
	RetryBackoff time.Duration
}

// Response carries the status and body of a completed request.
type Response struct {
	Status int
	Body   []byte
}

// New returns a client with default retry settings.
func New(baseURL string, tokens TokenSource, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		Tokens:       tokens,
		HTTP:         &http.Client{Timeout: requestTimeout},
		Logger:       logger,
		MaxAttempts:  defaultMaxAttempts,
		RetryBackoff: defaultRetryBackoff,
	}
}

// retryableStatus reports whether a status code warrants another attempt.
func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Do issues a request on behalf of a tenant. Transport failures and
// retryable statuses are retried with exponential backoff up to
// MaxAttempts. A 401/403 invalidates the cached token and is retried
// exactly once with a fresh one before giving up.
func (c *Client) Do(ctx context.Context, method, path, tenantID string, payload interface{}) (*Response, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request payload: %w", err)
		}
	}

	var (
		attempts    int
		authRetried bool
		lastErr     error
	)
	for {
		token, err := c.Tokens.Token(ctx, tenantID)
		if err != nil {
			return nil, err
		}

		status, respBody, err := c.send(ctx, method, path, tenantID, token, body)
		if err != nil {
			lastErr = err
			attempts++
			if attempts >= c.MaxAttempts {
				return nil, &APIError{Status: 0, Body: lastErr.Error()}
			}
			if err := c.wait(ctx, attempts); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case status < 400:
			return &Response{Status: status, Body: respBody}, nil

		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			if authRetried {
				return nil, &APIError{Status: status, Body: string(respBody)}
			}
			authRetried = true
			c.Tokens.Invalidate(tenantID)
			c.Logger.Warn("token rejected, retrying with a fresh login",
				zap.String("tenant", tenantID),
				zap.Int("status", status),
			)
			continue

		case retryableStatus(status):
			attempts++
			if attempts >= c.MaxAttempts {
				return nil, &APIError{Status: status, Body: string(respBody)}
			}
			c.Logger.Warn("request failed, retrying",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("status", status),
				zap.Int("attempt", attempts),
			)
			if err := c.wait(ctx, attempts); err != nil {
				return nil, err
			}
			continue

		default:
			return nil, &APIError{Status: status, Body: string(respBody)}
		}
	}
}

func (c *Client) send(ctx context.Context, method, path, tenantID, token string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Tenant-ID", tenantID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, data, nil
}

// wait sleeps for the exponential backoff step, honoring cancellation.
func (c *Client) wait(ctx context.Context, attempt int) error {
	backoff := c.RetryBackoff * time.Duration(1<<uint(attempt-1))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}
