// Package fileserve runs the optional static file server behind the
// telnet serve command.
package fileserve

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves one directory over HTTP until stopped.
type Server struct {
	logger *slog.Logger

	mu   sync.Mutex
	srv  *http.Server
	addr string
	dir  string
}

// New creates a stopped Server.
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{logger: logger}
}

// Start serves dir on the given port (0 picks a free one) and returns
// the base URL. Starting while running is an error; stop first.
func (s *Server) Start(dir string, port int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return "", fmt.Errorf("fileserve: already serving %s on %s", s.dir, s.addr)
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return "", fmt.Errorf("fileserve: listen: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/*", http.FileServer(http.Dir(dir)))

	srv := &http.Server{Handler: r}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Warn("fileserve: serve ended", "error", err)
		}
	}()

	s.srv = srv
	s.addr = ln.Addr().String()
	s.dir = dir
	s.logger.Info("fileserve: serving", "dir", dir, "addr", s.addr)
	return "http://" + s.addr + "/", nil
}

// Running reports whether the server is up and what it serves.
func (s *Server) Running() (dir, url string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return "", "", false
	}
	return s.dir, "http://" + s.addr + "/", true
}

// Stop shuts the server down, draining in-flight requests briefly.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return fmt.Errorf("fileserve: not running")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.srv.Shutdown(ctx)
	s.srv = nil
	s.addr = ""
	s.dir = ""
	if err != nil {
		return fmt.Errorf("fileserve: shutdown: %w", err)
	}
	return nil
}
