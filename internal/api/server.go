package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/discount-generator/internal/auth"
	"github.com/ignite/discount-generator/internal/config"
	"github.com/ignite/discount-generator/internal/service/campaign"
)

// Server represents the API server
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new API server. authManager and health may be nil.
func NewServer(cfg config.ServerConfig, svc *campaign.Service, authManager *auth.AuthManager, health *HealthChecker) *Server {
	if health == nil {
		health = NewHealthChecker(nil, nil)
	}
	h := NewHandlers(svc, cfg.MaxUploadBytes())
	router := SetupRoutes(h, health, authManager, cfg.AllowedOrigins)

	return &Server{
		config:  cfg,
		handler: router,
		router:  router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// Uploads of large spreadsheets need a generous read window.
		ReadTimeout:       5 * time.Minute,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
