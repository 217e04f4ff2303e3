// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server provides the HTTP API for topic-radar: the history REST
// endpoints and the SSE research stream.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pdiddy/topic-radar/internal/research"
	"github.com/pdiddy/topic-radar/pkg/types"
)

// Runner starts one research run and pushes progress events.
type Runner interface {
	Stream(ctx context.Context, topic string, onEvent func(research.Event)) (*types.ResearchReport, int64, error)
}

// HistoryReader reads and deletes persisted research history.
type HistoryReader interface {
	List(ctx context.Context, limit int) ([]types.HistoryEntry, error)
	Get(ctx context.Context, id int64) (*types.HistoryEntry, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Server is the HTTP server for the topic-radar API.
type Server struct {
	runner  Runner
	history HistoryReader
	config  *types.ServerConfig
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(runner Runner, history HistoryReader, cfg *types.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		runner:  runner,
		history: history,
		config:  cfg,
		logger:  logger,
	}
}

// Router builds the chi router. The research stream route carries no
// timeout middleware: an SSE run holds its connection open for as long as
// the external stream takes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/api/history", s.handleListHistory)
		r.Get("/api/history/{id}", s.handleGetHistory)
		r.Delete("/api/history/{id}", s.handleDeleteHistory)
		r.Get("/health", s.handleHealth)
	})

	r.Get("/api/stream", s.handleStream)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
