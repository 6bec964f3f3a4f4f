// internal/common/server/ops.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"dms-workers/internal/common/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// OpsServer exposes liveness, readiness and Prometheus metrics.
type OpsServer struct {
	router   *chi.Mux
	server   *http.Server
	checks   map[string]Check
	gatherer prometheus.Gatherer
	logger   logger.Logger
	timeout  time.Duration
}

type Option func(*OpsServer)

// WithCheck adds a readiness check under name.
func WithCheck(name string, check Check) Option {
	return func(s *OpsServer) { s.checks[name] = check }
}

// WithGatherer replaces the default Prometheus registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *OpsServer) { s.gatherer = g }
}

func WithCheckTimeout(d time.Duration) Option {
	return func(s *OpsServer) { s.timeout = d }
}

func NewOpsServer(addr string, log logger.Logger, opts ...Option) *OpsServer {
	s := &OpsServer{
		router:   chi.NewRouter(),
		checks:   make(map[string]Check),
		gatherer: prometheus.DefaultGatherer,
		logger:   log.WithFields(map[string]interface{}{"component": "ops-server"}),
		timeout:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ready", s.handleReady)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *OpsServer) Handler() http.Handler { return s.router }

// Start serves in the background. Listen errors are logged.
func (s *OpsServer) Start() {
	go func() {
		s.logger.Info("Health/Metrics server listening", map[string]interface{}{"addr": s.server.Addr})
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()
}

func (s *OpsServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *OpsServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *OpsServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			s.logger.Warn("Readiness check failed", map[string]interface{}{
				"check": name,
				"error": err.Error(),
			})
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "unavailable"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": results,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
