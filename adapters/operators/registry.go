// Package operators - Operator registry adapters
//
// The local quote model multiplies by the number of registered
// operators. The registry itself is maintained elsewhere; these
// adapters only read the count.
package operators

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"catalog-cost/core/quote"
	"catalog-cost/internal/errors"
)

// Static reports a fixed operator count. Used for CLI runs and tests
// where no registry service exists.
type Static struct {
	count int
}

var _ quote.OperatorRegistry = (*Static)(nil)

// NewStatic creates a fixed-count registry
func NewStatic(count int) *Static {
	return &Static{count: count}
}

// OperatorCount returns the configured count
func (s *Static) OperatorCount(ctx context.Context) (int, error) {
	return s.count, nil
}

// Config configures the HTTP registry client
type Config struct {
	// BaseURL is the registry service root
	BaseURL string

	// HTTPTimeout bounds each count request
	HTTPTimeout time.Duration
}

// DefaultConfig returns production defaults
func DefaultConfig() *Config {
	return &Config{
		HTTPTimeout: 10 * time.Second,
	}
}

// HTTPRegistry reads the operator count from a registry service
type HTTPRegistry struct {
	httpClient *http.Client
	baseURL    string
}

var _ quote.OperatorRegistry = (*HTTPRegistry)(nil)

// NewHTTPRegistry creates a registry client
func NewHTTPRegistry(cfg *Config) *HTTPRegistry {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().HTTPTimeout
	}
	return &HTTPRegistry{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// OperatorCount fetches the current count. The local model floors
// failures to one operator, so errors degrade the estimate rather
// than break it.
func (r *HTTPRegistry) OperatorCount(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/operators/count", nil)
	if err != nil {
		return 0, errors.Internal("failed to create count request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, errors.Transport("operator registry unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, errors.Newf(errors.TypeTransport, "operator registry returned status %d", resp.StatusCode)
	}

	var payload struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, errors.Parsing("failed to decode operator count", err)
	}
	return payload.Count, nil
}
