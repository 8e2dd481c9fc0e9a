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

	"github.com/cenkalti/backoff/v5"
)

const defaultUserAgent = "redisctl"

// Client is the shared HTTP layer under the typed control plane clients. It
// owns JSON encoding, error classification, and command-path retry.
//
// Retry policy lives here and only here: transient and throttled errors are
// retried with exponential backoff for a bounded elapsed time. The
// operation poller disables this (WithoutRetry) because it runs its own
// deadline-bound retry loop and double-retrying would stretch its interval
// accounting.
type Client struct {
	httpClient *http.Client
	baseURL    string
	decorate   func(*http.Request)
	userAgent  string
	retry      bool
	maxElapsed time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithoutRetry disables command-path retry; callers then see every
// transient error as it happens.
func WithoutRetry() Option {
	return func(c *Client) { c.retry = false }
}

// WithRetryBudget bounds the total time spent retrying one request.
func WithRetryBudget(d time.Duration) Option {
	return func(c *Client) { c.maxElapsed = d }
}

// NewClient builds a client for one backend. decorate is called on every
// request to attach authentication.
func NewClient(baseURL string, decorate func(*http.Request), opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		decorate:   decorate,
		userAgent:  defaultUserAgent,
		retry:      true,
		maxElapsed: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request and decodes the JSON response.
func (c *Client) Get(ctx context.Context, path string) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (map[string]any, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (map[string]any, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (map[string]any, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// Once performs one JSON round trip with no retry, regardless of the
// client's retry policy. The operation poller uses this: it owns its own
// deadline-bound retry loop, and backoff underneath it would stretch the
// poll interval unpredictably.
func (c *Client) Once(ctx context.Context, method, path string, body any) (map[string]any, error) {
	return c.do(ctx, method, path, body)
}

// Do performs one JSON round trip, retrying transient failures when the
// client's retry policy is enabled.
func (c *Client) Do(ctx context.Context, method, path string, body any) (map[string]any, error) {
	if !c.retry {
		return c.do(ctx, method, path, body)
	}

	operation := func() (map[string]any, error) {
		result, err := c.do(ctx, method, path, body)
		if err != nil && !IsTransient(err) {
			return nil, backoff.Permanent(err)
		}
		return result, err
	}
	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(c.maxElapsed),
	)
}

// do performs a single JSON round trip without retry.
func (c *Client) do(ctx context.Context, method, path string, body any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Class: ClassPermanent, Message: "encoding request body", Err: err}
		}
		reader = bytes.NewReader(encoded)
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &Error{Class: ClassPermanent, Message: "building request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.decorate != nil {
		c.decorate(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Context errors pass through so cancellation is not misread as a
		// retryable network failure.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, NewTransientError(fmt.Sprintf("%s %s", method, url), err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, NewTransientError("reading response body", err)
	}

	if resp.StatusCode >= 400 {
		return nil, NewHTTPError(resp.StatusCode, errorMessage(payload, resp.StatusCode))
	}

	if len(bytes.TrimSpace(payload)) == 0 {
		return map[string]any{}, nil
	}

	var result map[string]any
	if err := json.Unmarshal(payload, &result); err != nil {
		// Some endpoints return bare arrays; wrap them so callers always
		// get a document.
		var list []any
		if listErr := json.Unmarshal(payload, &list); listErr == nil {
			return map[string]any{"items": list}, nil
		}
		return nil, &Error{Class: ClassPermanent, Message: "decoding response body", Err: err}
	}
	return result, nil
}

// errorMessage digs the human-readable message out of an error response
// body, falling back to the HTTP status text.
func errorMessage(payload []byte, statusCode int) string {
	var body map[string]any
	if err := json.Unmarshal(payload, &body); err == nil {
		for _, key := range []string{"description", "error", "message", "detail"} {
			if s, ok := body[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return http.StatusText(statusCode)
}
