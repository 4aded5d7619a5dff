// Package server provides the HTTP API for latexify.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/latexify/internal/config"
	"github.com/hyperjump/latexify/internal/pipeline"
)

// Server is the HTTP server for the conversion API.
type Server struct {
	converter *pipeline.Converter
	config    *config.ServerConfig
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(converter *pipeline.Converter, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		converter: converter,
		config:    cfg,
		logger:    logger,
	}
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: s.Router(),
	}
	return s
}

// Router builds the route tree with middleware applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if s.config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.RequestTimeout))
	}
	r.Use(cors(s.config.AllowedOrigins))

	r.Get("/health", s.handleHealth)
	r.Post("/convert", s.handleConvert)
	r.Route("/api", func(r chi.Router) {
		r.Get("/test", s.handleTest)
		r.Post("/convert", s.handleConvert)
		r.Post("/edit", s.handleEdit)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
// It returns http.ErrServerClosed after Stop.
func (s *Server) Start() error {
	s.logger.Info("Starting server",
		zap.String("addr", s.server.Addr),
		zap.Bool("llm", s.converter.HasBackend()))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server. It is safe to call before or
// concurrently with Start.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
