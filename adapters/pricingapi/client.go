// Package pricingapi - HTTP client for the external pricing service
package pricingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"catalog-cost/core/quote"
	"catalog-cost/core/types"
	"catalog-cost/internal/errors"
)

// Config configures the pricing service client
type Config struct {
	// BaseURL is the pricing service root
	BaseURL string

	// HTTPTimeout bounds each quote request
	HTTPTimeout time.Duration

	// UserAgent identifies this client to the service
	UserAgent string
}

// DefaultConfig returns production defaults
func DefaultConfig() *Config {
	return &Config{
		HTTPTimeout: 30 * time.Second,
		UserAgent:   "catalog-cost",
	}
}

// Client talks to the pricing service over HTTP. It implements
// quote.Transport; the orchestrator owns retries and cancellation.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

var _ quote.Transport = (*Client)(nil)

// NewClient creates a pricing service client
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().HTTPTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
	}
}

// Quote posts a quote request and decodes the response. Cancellation
// of ctx is returned untouched so callers can tell it from failure.
func (c *Client) Quote(ctx context.Context, req quote.Request) (*types.Quote, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Internal("failed to encode quote request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/quote", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Internal("failed to create quote request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Transport("pricing service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorFromResponse(resp)
	}

	var q types.Quote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return nil, errors.Parsing("failed to decode quote response", err)
	}
	return &q, nil
}

// errorFromResponse converts a non-success response into a transport
// error, preferring the service's detail message over the bare status.
func errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var envelope struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if detail := strings.TrimSpace(envelope.Detail); detail != "" {
			return errors.New(errors.TypeTransport, detail)
		}
	}
	return errors.Newf(errors.TypeTransport, "pricing service returned status %d", resp.StatusCode)
}
