package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/harishkotra/SketchStack/pkg/httputil"
	"github.com/harishkotra/SketchStack/pkg/observability"
)

// Client provides shared HTTP functionality for upstream JSON APIs.
// It applies common headers, classifies failures for [httputil.Retry] and
// reports every call through the upstream observability hooks.
type Client struct {
	http     *http.Client
	upstream string
	headers  map[string]string
}

// NewClient creates a Client for the named upstream ("ollama") with default
// headers applied to all requests. Pass nil for headers if none are needed.
func NewClient(upstream string, headers map[string]string) *Client {
	return &Client{
		http:     NewHTTPClient(),
		upstream: upstream,
		headers:  headers,
	}
}

// Upstream returns the name used in observability events.
func (c *Client) Upstream() string { return c.upstream }

// PostJSON sends body as JSON and decodes the JSON response into v. op names
// the operation for observability. Network failures, deadline expiry and
// 429/5xx responses are returned as [httputil.RetryableError].
func (c *Client) PostJSON(ctx context.Context, op, url string, body, v any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(ctx, op, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrBadResponse, err)
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, op, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, op, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrBadResponse, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, op string, req *http.Request) (*http.Response, error) {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.Upstream()
	hooks.OnRequest(ctx, c.upstream, op)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, c.upstream, op, err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrTimeout, err))
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, c.upstream, op, resp.StatusCode, time.Since(start))

	if err := httputil.CheckStatus(resp); err != nil {
		resp.Body.Close()
		hooks.OnError(ctx, c.upstream, op, err)
		return nil, err
	}
	return resp, nil
}
