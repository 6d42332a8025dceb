package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns the settings the scoreboard API serves
// with out of the box. Requests are tiny JSON documents, but a client
// on the events endpoint holds its response open, so the write timeout
// must comfortably exceed the 15s SSE keepalive interval.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "",
		Port:            8080,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server runs the scoreboard API over HTTP and shuts it down without
// cutting off in-flight requests.
type Server struct {
	server          *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// NewServer wires the router into an HTTP server with the given settings.
func NewServer(handler http.Handler, config ServerConfig, logger *slog.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
		},
		logger:          logger,
		shutdownTimeout: config.ShutdownTimeout,
	}
}

// Start listens and serves until Shutdown is called. A closed server
// returns nil, not http.ErrServerClosed.
func (s *Server) Start() error {
	s.logger.Info("scoreboard api listening", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving api: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests, giving up after the configured
// shutdown timeout. Open SSE streams are closed by the drain.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("draining scoreboard api")

	drainCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("draining api: %w", err)
	}

	s.logger.Info("scoreboard api stopped")
	return nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}
