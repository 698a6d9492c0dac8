package pricingapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catalog-cost/core/quote"
	"catalog-cost/core/types"
	"catalog-cost/internal/errors"
)

func testRequest() quote.Request {
	return quote.Request{
		RoleID:          "web-app-files",
		OfferingID:      "cloud",
		PlanID:          "team",
		Inputs:          map[string]interface{}{"users": 20},
		Currency:        types.CurrencyEUR,
		Region:          types.RegionGlobal,
		IncludeSetupFee: true,
	}
}

func TestClientQuote(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total": "50", "currency": "EUR", "region": "global", "interval": "month"}`))
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL})
	q, err := client.Quote(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}

	if gotPath != "POST /quote" {
		t.Errorf("request = %q, want POST /quote", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q, want application/json", gotContentType)
	}
	if gotBody["role_id"] != "web-app-files" || gotBody["plan_id"] != "team" {
		t.Errorf("body = %v, want the request fields on the wire", gotBody)
	}
	if _, leaked := gotBody["Units"]; leaked {
		t.Error("expected local formula factors to stay off the wire")
	}

	if q.Total == nil || q.Total.String() != "50" {
		t.Fatalf("quote total = %v, want 50", q.Total)
	}
	if q.Currency != types.CurrencyEUR || q.Interval != types.IntervalMonth {
		t.Errorf("quote = %+v, want currency and interval decoded", q)
	}
}

func TestClientQuoteDetailEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "Invalid number for Users."}`))
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL})
	_, err := client.Quote(context.Background(), testRequest())

	var appErr *errors.Error
	if !stderrors.As(err, &appErr) || appErr.Type != errors.TypeTransport {
		t.Fatalf("Quote() error = %v, want a transport error", err)
	}
	if appErr.Message != "Invalid number for Users." {
		t.Errorf("message = %q, want the detail surfaced verbatim", appErr.Message)
	}
}

func TestClientQuoteStatusFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream down</html>"))
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL})
	_, err := client.Quote(context.Background(), testRequest())

	var appErr *errors.Error
	if !stderrors.As(err, &appErr) {
		t.Fatalf("Quote() error = %v, want the typed error", err)
	}
	if appErr.Message != "pricing service returned status 502" {
		t.Errorf("message = %q, want the status fallback", appErr.Message)
	}
}

func TestClientQuoteCancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.Quote(ctx, testRequest())
	if !errors.IsCanceled(err) {
		t.Errorf("Quote() error = %v, want cancellation passed through", err)
	}
	if errors.IsType(err, errors.TypeTransport) {
		t.Error("cancellation must not be reported as a transport failure")
	}
}

func TestClientQuoteBadResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL})
	_, err := client.Quote(context.Background(), testRequest())
	if !errors.IsType(err, errors.TypeParsing) {
		t.Errorf("Quote() error = %v, want a parsing error", err)
	}
}

func TestClientDefaults(t *testing.T) {
	client := NewClient(nil)
	if client.httpClient.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want the 30s default", client.httpClient.Timeout)
	}

	trimmed := NewClient(&Config{BaseURL: "http://pricing.local/"})
	if trimmed.baseURL != "http://pricing.local" {
		t.Errorf("baseURL = %q, want the trailing slash trimmed", trimmed.baseURL)
	}
}
