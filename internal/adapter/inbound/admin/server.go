package admin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonny/kubot/internal/adapter/inbound/admin/middleware"
	"github.com/jonny/kubot/pkg/health"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	ShutdownTimeout   time.Duration
	RateLimitEnabled  bool
	RequestsPerMinute int
	// AuthToken guards /api/v1 when set; the health probes stay open so
	// kubelet can reach them.
	AuthToken string
}

// Server exposes health probes and a read-only operations API next to the
// chat transport. It is meant for cluster-internal consumers: probes,
// dashboards, on-call scripts.
type Server struct {
	cfg     ServerConfig
	handler *Handler
	checker *health.Checker
	logger  *slog.Logger
	srv     *http.Server
}

// NewServer creates a new Server with the given config and API handler.
func NewServer(cfg ServerConfig, handler *Handler, checker *health.Checker, logger *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		checker: checker,
		logger:  logger,
	}
}

// SetupRoutes builds and returns an http.Handler with all middleware applied.
// Route layout:
//
//	GET /healthz          - Liveness probe
//	GET /readyz           - Readiness probe (cluster and database checks)
//	GET /api/v1/jobs      - Async jobs, newest first
//	GET /api/v1/history   - Command history
//	GET /api/v1/audit     - Audit log
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.checker.LivenessHandler())
	mux.HandleFunc("GET /readyz", s.checker.ReadinessHandler())

	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/jobs", s.handler.ListJobs)
	api.HandleFunc("GET /api/v1/jobs/{id}", s.handler.GetJob)
	api.HandleFunc("GET /api/v1/history", s.handler.ListHistory)
	api.HandleFunc("GET /api/v1/audit", s.handler.ListAudit)

	var apiHandler http.Handler = api
	if s.cfg.AuthToken != "" {
		apiHandler = middleware.BearerAuth(s.cfg.AuthToken)(apiHandler)
	}
	mux.Handle("/api/v1/", apiHandler)

	// Middleware stack (outermost = first to execute):
	//   SecurityHeaders -> Logging -> RateLimit
	var h http.Handler = mux
	if s.cfg.RateLimitEnabled {
		h = middleware.NewRateLimiter(s.cfg.RequestsPerMinute)(h)
	}
	h = middleware.NewLoggingMiddleware(s.logger)(h)
	h = middleware.SecurityHeaders(h)

	return h
}

// Start starts the HTTP server and blocks until ctx is cancelled, then
// performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.SetupRoutes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("admin server listening", "port", s.cfg.Port)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("admin server shutdown error: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}
