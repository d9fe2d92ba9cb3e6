// Package server provides the HTTP API for Omoide.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/omoide/internal/cache"
	"github.com/hyperjump/omoide/internal/config"
	"github.com/hyperjump/omoide/internal/ratelimit"
	"github.com/hyperjump/omoide/internal/synth"
	"go.uber.org/zap"
)

// Server is the HTTP server for the Omoide API.
type Server struct {
	orch    *synth.Orchestrator
	limiter *ratelimit.Limiter
	store   *cache.MemoryStore
	config  *config.ServerConfig
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	orch *synth.Orchestrator,
	limiter *ratelimit.Limiter,
	store *cache.MemoryStore,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		orch:    orch,
		limiter: limiter,
		store:   store,
		config:  cfg,
		logger:  logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/moments/synthesize", s.handleSynthesize)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
