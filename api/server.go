// Package api exposes retrieval and question answering over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Server is the HTTP API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	logger     zerolog.Logger
	addr       string
}

// NewServer returns a Server serving h on addr.
func NewServer(addr string, h *Handler, logger zerolog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(CorrelationID(logger))
	router.Use(Logging)

	router.Get("/healthz", Health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(2 * time.Minute))
		r.Post("/search", h.Search)
		r.Post("/ask", h.Ask)
	})
	return &Server{router: router, logger: logger, addr: addr}
}

// Router returns the root handler.
func (s *Server) Router() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.addr }

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	s.logger.Info().Str("addr", s.addr).Msg("starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api: http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
