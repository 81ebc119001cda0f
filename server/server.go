// Package server provides the HTTP boundary for the calculation engine.
//
// The boundary owns exactly two failure modes: malformed or schema-invalid
// input (400, problem details) and unexpected infrastructure failures (500).
// Business validation never surfaces as 4xx; it is reported inside a 200
// response as calculation messages with outcome FAILURE.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/VismaKosice/pension-engine/engine"
	"github.com/VismaKosice/pension-engine/log"
	"github.com/VismaKosice/pension-engine/metrics"
)

// Config configures the HTTP server.
type Config struct {
	// Port is the listening port (required).
	Port int
	// Evaluator runs calculation requests (required).
	Evaluator *engine.Evaluator
	// Logger logs server lifecycle and request failures.
	Logger *log.Logger
	// Collector records boundary metrics. Nil-safe.
	Collector *metrics.Collector
}

// Server is the HTTP front of the calculation engine.
type Server struct {
	config Config
	logger *log.Logger
	http   *http.Server
}

// New creates a Server with its routes mounted.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}

	s := &Server{
		config: cfg,
		logger: cfg.Logger,
	}
	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// routes builds the router.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Post("/calculation-requests", s.handleCalculationRequest)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	return r
}

// Handler exposes the router for in-process testing.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe starts serving. Blocks until the listener fails or Shutdown
// is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("server listening", map[string]any{"addr": s.http.Addr})
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// recoverer converts panics into a 500 problem document that does not leak
// internals, replacing chi's default HTML error page.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic during request", map[string]any{
					"path":  r.URL.Path,
					"panic": fmt.Sprintf("%v", rec),
				})
				writeProblem(w, http.StatusInternalServerError,
					"an unexpected error occurred while processing the request", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleMetrics serves the counter snapshot as JSON.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.config.Collector.Snapshot())
}
