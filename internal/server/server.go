package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/sharewatch/internal/logging"
	"github.com/muurk/sharewatch/internal/shares"
	"github.com/muurk/sharewatch/internal/status"
)

// Config holds the status server configuration
type Config struct {
	Host string
	Port int
}

// ShareSource provides the current set of known shares.
type ShareSource interface {
	AllShares() []shares.Share
}

// StatusSource provides connection statuses and a live event feed.
type StatusSource interface {
	Statuses() map[string]shares.ConnectionStatus
	Subscribe() (<-chan status.Event, func())
}

// Server exposes the discovered shares and their connection statuses
// over an HTTP JSON API and a WebSocket event feed.
type Server struct {
	config   *Config
	shares   ShareSource
	statuses StatusSource
	httpSrv  *http.Server
	wg       sync.WaitGroup
}

// New creates a new status server. Nothing is bound until Start.
func New(config *Config, shareSrc ShareSource, statusSrc StatusSource) *Server {
	s := &Server{
		config:   config,
		shares:   shareSrc,
		statuses: statusSrc,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/shares", s.handleShares)
	mux.HandleFunc("/api/statuses", s.handleStatuses)
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.httpSrv = &http.Server{
		Addr:              net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Start starts the server and blocks until Shutdown is called or the
// listener fails.
func (s *Server) Start() error {
	logging.Info("Starting share status server",
		zap.String("addr", s.httpSrv.Addr),
	)

	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("status server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for active
// WebSocket connections to close.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down status server...")

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		logging.Error("Error shutting down HTTP server", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All WebSocket connections closed")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, abandoning open connections")
	}

	logging.Sync()
	return nil
}
