// Package server exposes the assistant over HTTP: JSON chat endpoints,
// session reset, backend introspection, and a WebSocket chat stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pazarbot/pazarbot/internal/assistant"
	"github.com/pazarbot/pazarbot/internal/search"
)

// Server is the HTTP front of the assistant.
type Server struct {
	addr      string
	assistant *assistant.Assistant
	search    *search.Client
	httpSrv   *http.Server
}

// New creates a Server listening on host:port.
func New(host string, port int, a *assistant.Assistant, sc *search.Client) *Server {
	s := &Server{
		addr:      fmt.Sprintf("%s:%d", host, port),
		assistant: a,
		search:    sc,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /chat-enhanced", s.handleChatEnhanced)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("GET /collections", s.handleCollections)
	mux.HandleFunc("GET /knowledge-base", s.handleKnowledgeBase)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("OPTIONS /", s.handlePreflight)

	s.httpSrv = &http.Server{
		Addr:              s.addr,
		Handler:           withRequestID(withCORS(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server: listening", "addr", s.addr)
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server: stopped")
	return ctx.Err()
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler { return s.httpSrv.Handler }
