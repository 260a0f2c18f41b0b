// Package api serves the record engine over a REST API.
//
// Every route under /api/v1 requires the X-API-Key header. Responses use the
// APIResponse envelope except for /api/v1/export, which streams the CSV or
// XML document, and /metrics, which serves Prometheus.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ssargent/filecabinet/pkg/metrics"
)

const shutdownTimeout = 5 * time.Second

// Server holds the API server state
type Server struct {
	records RecordStore
	config  ServerConfig
	metrics *metrics.Metrics
	logger  log.Logger
}

// NewServer creates a new API server
func NewServer(records RecordStore, config ServerConfig, m *metrics.Metrics, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Server{
		records: records,
		config:  config,
		metrics: m,
		logger:  logger,
	}
}

// Routes builds the router. A nil gatherer leaves /metrics unregistered.
func (s *Server) Routes(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(s.config.APIKey, s.metrics))

		r.Get("/health", s.instrument("GET", "/api/v1/health", s.handleHealth))

		// Records
		r.Get("/records", s.instrument("GET", "/api/v1/records", s.handleListRecords))
		r.Post("/records", s.instrument("POST", "/api/v1/records", s.handleCreateRecord))
		r.Get("/records/find", s.instrument("GET", "/api/v1/records/find", s.handleFindRecords))
		r.Get("/records/{id}", s.instrument("GET", "/api/v1/records/{id}", s.handleGetRecord))
		r.Put("/records/{id}", s.instrument("PUT", "/api/v1/records/{id}", s.handleEditRecord))

		// Exchange
		r.Get("/export", s.instrument("GET", "/api/v1/export", s.handleExport))
		r.Post("/import", s.instrument("POST", "/api/v1/import", s.handleImport))

		// Diagnostics
		r.Get("/stats", s.instrument("GET", "/api/v1/stats", s.handleStats))
	})

	return r
}

// StartServer serves the API until ctx is cancelled, then shuts down gracefully
func StartServer(ctx context.Context, s *Server, gatherer prometheus.Gatherer) error {
	if s.config.APIKey == "" {
		return fmt.Errorf("an API key is required")
	}

	addr := fmt.Sprintf("%s:%d", s.config.Bind, s.config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		level.Info(s.logger).Log("msg", "starting REST API server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		level.Info(s.logger).Log("msg", "shutting down REST API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) instrument(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	if s.metrics == nil {
		return handler
	}
	return s.metrics.InstrumentHandler(method, endpoint, handler)
}

// requestLogger logs one line per request
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		level.Debug(s.logger).Log("msg", "request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "bytes", ww.BytesWritten(), "duration", time.Since(start))
	})
}
