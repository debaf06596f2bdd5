// Package api provides the webhook callback server. The remote system
// notifies it when a ticket changes; the handler triggers a single-record
// resync instead of waiting for the next scheduled run.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/kerkhofftech/autotask-sync/internal/config"
)

// TicketResyncer refreshes one ticket (and its children) from the remote
// system.
type TicketResyncer interface {
	ResyncTicket(ctx context.Context, id int64) error
}

// Server is the HTTP callback server.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	resyncer   TicketResyncer
	logger     zerolog.Logger
	cfg        config.ServerConfig
}

// NewServer creates the callback server instance.
func NewServer(cfg config.ServerConfig, resyncer TicketResyncer, logger zerolog.Logger) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		resyncer: resyncer,
		logger:   logger.With().Str("component", "api").Logger(),
		cfg:      cfg,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/callbacks/tickets", s.handleTicketCallback).Methods(http.MethodPost)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the server until it fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("callback server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("callback server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
