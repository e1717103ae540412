// Package server exposes the snapshot over a small REST surface.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dkelsall/piefolio/internal/common"
	"github.com/dkelsall/piefolio/internal/interfaces"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	portfolio interfaces.PortfolioService
	store     interfaces.CredentialStore
	config    *common.Config
	logger    *common.Logger
	server    *http.Server
}

// NewServer creates a new HTTP REST API server.
func NewServer(portfolio interfaces.PortfolioService, store interfaces.CredentialStore, config *common.Config, logger *common.Logger) *Server {
	s := &Server{
		portfolio: portfolio,
		store:     store,
		config:    config,
		logger:    logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := applyMiddleware(mux, logger)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP server starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("HTTP server shutting down")
	return s.server.Shutdown(ctx)
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/portfolio", s.handlePortfolio)
	mux.HandleFunc("/api/portfolio/refresh", s.handleRefresh)
	mux.HandleFunc("/api/credentials", s.handleCredentials)
}
