// Package shopify executes GraphQL documents against the admin API.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const DefaultAPIVersion = "2025-10"

// Request is one GraphQL document plus its variables.
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Response is the GraphQL envelope. Data is left raw for the caller to decode.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors GraphQLErrors   `json:"errors,omitempty"`
}

// Decode unmarshals Data into out.
func (r *Response) Decode(out any) error {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return fmt.Errorf("decode data (shopify): %w", ErrNoData)
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("decode data (shopify): %w", err)
	}
	return nil
}

// Executor runs a GraphQL request. Client implements it; tests and the
// offline store substitute their own.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Response, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, req Request) (*Response, error)

func (f ExecutorFunc) Execute(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Client talks to https://{shop}/admin/api/{version}/graphql.json.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Endpoint builds the admin GraphQL URL for a shop domain.
func Endpoint(shop, version string) string {
	if version == "" {
		version = DefaultAPIVersion
	}
	shop = strings.TrimSuffix(strings.TrimSpace(shop), "/")
	if !strings.Contains(shop, "://") {
		shop = "https://" + shop
	}
	return shop + "/admin/api/" + version + "/graphql.json"
}

// NewClient returns a client for a full GraphQL endpoint URL.
func NewClient(endpoint, token string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute posts the request. Non-2xx statuses return *StatusError and a
// non-empty errors array returns GraphQLErrors; no retries are attempted.
func (c *Client) Execute(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request (shopify): %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request (shopify): %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.token != "" {
		httpReq.Header.Set("X-Shopify-Access-Token", c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute (shopify): %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body (shopify): %w", err)
	}
	c.logger.Debug("graphql request",
		"endpoint", c.endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(respBody), 512)}
	}

	var out Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("parse response (shopify): %w", err)
	}
	if len(out.Errors) > 0 {
		return &out, out.Errors
	}
	return &out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
