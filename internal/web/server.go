package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gantrydev/gantry/internal/config"
)

// Server is the inspection HTTP server.
type Server struct {
	handler http.Handler
	cfg     config.ServerConfig
	srv     *http.Server
}

// NewServer creates a new inspection Server.
func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{
		handler: handler,
		cfg:     cfg,
	}
}

// bodySizeLimitMiddleware caps request body sizes.
func bodySizeLimitMiddleware(limit int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe starts the server with graceful shutdown. It blocks
// until the context is cancelled or a termination signal is received.
func (s *Server) ListenAndServe(ctx context.Context) error {
	port := s.cfg.Port
	if port == 0 {
		port = 8080
	}

	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: bodySizeLimitMiddleware(10<<20, s.handler), // 10MB body limit
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[web] listening on :%d", port)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Printf("[web] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
