// Package server exposes complexity runs over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/haskel/bigo/internal/config"
	"github.com/haskel/bigo/internal/executor"
	"github.com/haskel/bigo/internal/monitor"
	"github.com/haskel/bigo/internal/server/middleware"
	"github.com/haskel/bigo/internal/storage"
)

// writeSlack is added to a run's total budget when extending the write
// deadline of a /complexity response.
const writeSlack = 30 * time.Second

type Server struct {
	httpServer *http.Server
	runner     executor.Runner
	store      *storage.RunStore
	host       *monitor.Host
	config     *config.Config
	logger     *slog.Logger
	version    string
	authConfig *middleware.AuthConfig

	// runMu keeps a single measurement in flight; concurrent runs would
	// perturb each other's timings.
	runMu sync.Mutex
}

// New creates a server. store and host may be nil, which disables the run
// listing endpoints and the busy-host check.
func New(cfg *config.Config, runner executor.Runner, store *storage.RunStore, host *monitor.Host, logger *slog.Logger, version string) *Server {
	authConfig := &middleware.AuthConfig{
		Enabled:  cfg.Auth.Enabled,
		User:     cfg.Auth.User,
		Password: cfg.Auth.Password,
	}

	s := &Server{
		runner:     runner,
		store:      store,
		host:       host,
		config:     cfg,
		logger:     logger,
		version:    version,
		authConfig: authConfig,
	}

	handler := middleware.Chain(
		s.setupRoutes(),
		middleware.Recovery(logger),
		middleware.Logging(logger, "/health"),
		middleware.SecurityHeaders(),
		middleware.RateLimit(&middleware.RateLimitConfig{
			Enabled:           cfg.Server.RateLimit.Enabled,
			RequestsPerSecond: cfg.Server.RateLimit.RequestsPerSecond,
			Burst:             cfg.Server.RateLimit.Burst,
			PerIP:             cfg.Server.RateLimit.PerIP,
		}),
		middleware.Auth(authConfig, "/health"), // Exclude /health from auth
		middleware.MaxBody(cfg.Server.MaxBodyBytes),
	)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("server starting",
		"addr", s.httpServer.Addr,
	)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
