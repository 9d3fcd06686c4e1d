// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api exposes the harvester's operational HTTP surface: liveness,
readiness and the last run report.

Architecture:

  - There are no catalog or job endpoints; the harvester is driven by its scheduler.
  - Only this package and cmd/harvester import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/config"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/constants"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/middleware"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// Handlers groups the ops handlers.
type Handlers struct {
	// Liveness is the /health handler; 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler; 200 when every dependency answers.
	Readiness http.HandlerFunc

	// Status is the /status handler; the last scheduler report.
	Status http.HandlerFunc
}

// # Server Initialization

// NewServer constructs the router with the middleware chain and routes.
func NewServer(cfg *config.Config, log *slog.Logger, h Handlers) *Server {
	r := NewRouter(log, h)

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// NewRouter builds the chi router on its own, for tests.
func NewRouter(log *slog.Logger, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.PanicRecovery())
	r.Use(chimw.CleanPath)

	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Get("/status", h.Status)

	return r
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server. It blocks until the server is closed.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
