// Package api - Thin quote service layer
// The API is ONLY responsible for: input ingestion, evaluation dispatch,
// output serialization. Pricing arithmetic lives in core/pricing.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"catalog-cost/core/catalog"
	"catalog-cost/internal/errors"
	"catalog-cost/internal/logging"
)

// Config controls the HTTP server
type Config struct {
	// Address to listen on
	Address string

	// Timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MaxBodySize limits request body size in bytes
	MaxBodySize int64
}

// DefaultConfig returns sensible server defaults
func DefaultConfig() *Config {
	return &Config{
		Address:      ":8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		MaxBodySize:  1 << 20, // 1MB
	}
}

// Server is the quote service server. The catalog snapshot is held
// behind an atomic pointer so a watcher can swap it without restart.
type Server struct {
	config  *Config
	version string
	catalog atomic.Pointer[catalog.Catalog]

	mux     *http.ServeMux
	handler http.Handler
	server  *http.Server
}

// NewServer creates a quote service around a catalog snapshot.
// A nil config uses DefaultConfig; a nil catalog serves an empty one.
func NewServer(version string, cat *catalog.Catalog, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if cat == nil {
		cat = catalog.New(nil, nil)
	}

	s := &Server{
		config:  config,
		version: version,
		mux:     http.NewServeMux(),
	}
	s.catalog.Store(cat)

	s.registerRoutes()
	s.handler = s.router()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /quote", s.handleQuote)
	s.mux.HandleFunc("GET /roles", s.handleRoles)
	s.mux.HandleFunc("GET /roles/{id}", s.handleRole)
	s.mux.HandleFunc("GET /bundles", s.handleBundles)

	// Bundle IDs embed the deploy target, so the route takes the
	// rest of the path ("server/collab-suite").
	s.mux.HandleFunc("GET /bundles/{id...}", s.handleBundle)

	// Supporting endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// router assembles the middleware chain around the mux
func (s *Server) router() http.Handler {
	handler := s.loggingMiddleware(s.mux)
	handler = s.recoveryMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

// SetCatalog swaps the active catalog snapshot. Safe for concurrent
// use; the directory watcher calls this after a reload.
func (s *Server) SetCatalog(cat *catalog.Catalog) {
	if cat == nil {
		return
	}
	s.catalog.Store(cat)
}

// Catalog returns the active snapshot
func (s *Server) Catalog() *catalog.Catalog {
	return s.catalog.Load()
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Start begins serving on the configured address and blocks until the
// listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.config.Address,
		Handler:      s,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	logging.Info("quote service listening",
		zap.String("address", s.config.Address),
		zap.String("version", s.version),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Transport("http server failed", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Middleware

type contextKey string

const requestIDKey contextKey = "request_id"

// requestIDMiddleware tags each request with an ID, honoring one the
// caller already sent. The ID travels in the context, the response
// header and the error envelope.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		logging.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("request_id", requestID(r.Context())),
		)
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.Error("handler panic",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.String("request_id", requestID(r.Context())),
				)
				s.writeError(w, r, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for access logs
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestID extracts the ID injected by requestIDMiddleware
func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Helpers

func (s *Server) parseJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, s.config.MaxBodySize))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, detail string, status int) {
	s.writeJSON(w, ErrorResponse{
		Detail:    detail,
		RequestID: requestID(r.Context()),
	}, status)
}
