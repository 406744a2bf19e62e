package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"mercator-hq/underwriter/pkg/audit"
	"mercator-hq/underwriter/pkg/config"
	"mercator-hq/underwriter/pkg/documents"
	"mercator-hq/underwriter/pkg/evaluation"
	"mercator-hq/underwriter/pkg/telemetry/health"
	"mercator-hq/underwriter/pkg/telemetry/metrics"
	"mercator-hq/underwriter/pkg/telemetry/tracing"
)

// Dependencies are the components the HTTP API serves. Evaluator is
// required; the others disable their routes when nil.
type Dependencies struct {
	Evaluator *evaluation.Service
	Documents documents.Store
	Audit     audit.Storage
	Health    *health.Checker
	Metrics   *metrics.Collector
	Tracer    *tracing.Tracer

	// AuditQuery bounds GET /audit result sizes.
	AuditQuery config.QueryConfig

	// MetricsPath, LivenessPath and ReadinessPath default to /metrics,
	// /health and /ready.
	MetricsPath   string
	LivenessPath  string
	ReadinessPath string

	// Version, Commit and BuildDate are served at GET /version when
	// Version is set.
	Version   string
	Commit    string
	BuildDate string

	Logger *slog.Logger
}

// Server is the underwriting HTTP API server.
type Server struct {
	config     *config.ServerConfig
	deps       Dependencies
	logger     *slog.Logger
	handler    http.Handler
	httpServer *http.Server

	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server. Routes are built once here.
func NewServer(cfg *config.ServerConfig, deps Dependencies) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server config cannot be nil")
	}
	if deps.Evaluator == nil {
		return nil, fmt.Errorf("evaluator cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.MetricsPath == "" {
		deps.MetricsPath = config.DefaultPrometheusPath
	}
	if deps.LivenessPath == "" {
		deps.LivenessPath = config.DefaultLivenessPath
	}
	if deps.ReadinessPath == "" {
		deps.ReadinessPath = config.DefaultReadinessPath
	}
	if deps.AuditQuery.DefaultLimit <= 0 {
		deps.AuditQuery.DefaultLimit = config.DefaultAuditQueryDefaultLimit
	}
	if deps.AuditQuery.MaxLimit <= 0 {
		deps.AuditQuery.MaxLimit = config.DefaultAuditQueryMaxLimit
	}

	s := &Server{
		config: cfg,
		deps:   deps,
		logger: deps.Logger.With("component", "server"),
	}
	s.handler = s.setupRoutes()
	return s, nil
}

// Start serves until ctx is cancelled or the listener fails, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.handler,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting underwriting server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully stops the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		s.logger.Info("underwriting server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// setupRoutes registers the API routes and wraps them in the middleware
// chain. Logging and metrics sit directly around the mux so they observe
// the matched route pattern.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /validate", s.handleValidate)
	mux.HandleFunc("POST /loans/{loanID}/evaluate", s.handleEvaluateLoan)
	mux.HandleFunc("GET /rules", s.handleListRules)
	mux.HandleFunc("GET /validators", s.handleListValidators)

	if s.deps.Documents != nil {
		mux.HandleFunc("PUT /loans/{loanID}/documents/{source}", s.handlePutDocument)
		mux.HandleFunc("GET /loans/{loanID}/documents/{source}", s.handleGetDocument)
		mux.HandleFunc("DELETE /loans/{loanID}/documents", s.handleDeleteDocuments)
	}
	if s.deps.Audit != nil {
		mux.HandleFunc("GET /audit", s.handleQueryAudit)
		mux.HandleFunc("GET /audit/{id}", s.handleGetAudit)
	}
	if s.deps.Health != nil {
		mux.Handle("GET "+s.deps.LivenessPath, s.deps.Health.LivenessHandler())
		mux.Handle("GET "+s.deps.ReadinessPath, s.deps.Health.ReadinessHandler())
	}
	if s.deps.Version != "" {
		mux.Handle("GET /version", health.VersionHandler(s.deps.Version, s.deps.Commit, s.deps.BuildDate))
	}
	if s.deps.Metrics != nil {
		mux.Handle("GET "+s.deps.MetricsPath, s.deps.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = MetricsMiddleware(s.deps.Metrics)(handler)
	if s.config.Auth.Enabled {
		exempt := map[string]bool{
			s.deps.LivenessPath:  true,
			s.deps.ReadinessPath: true,
			s.deps.MetricsPath:   true,
			"/version":           true,
		}
		handler = APIKeyMiddleware(NewAPIKeyValidator(s.config.Auth.Keys), s.config.Auth.Header, exempt, s.logger)(handler)
	}
	handler = LoggingMiddleware(s.logger)(handler)
	if s.deps.Tracer != nil {
		handler = s.deps.Tracer.Middleware(handler)
	}
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(s.logger)(handler)

	return handler
}
