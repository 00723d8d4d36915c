// Package telnet serves the browsing UI over raw TCP with just enough
// telnet protocol to keep classic clients happy: option negotiation up
// front, CRLF line endings, and an ANSI clear before each page.
package telnet

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/hazyhaar/termweb/session"
)

// Telnet protocol bytes used in negotiation.
const (
	cmdSE   = 240
	cmdSB   = 250
	cmdWILL = 251
	cmdWONT = 252
	cmdDO   = 253
	cmdDONT = 254
	cmdIAC  = 255

	optEcho     = 1
	optSGA      = 3
	optLinemode = 34
)

// SessionFactory creates the per-connection browsing state.
type SessionFactory func() *session.Session

// Config configures the telnet server.
type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:2323".
	Addr string

	// NewSession is called once per connection.
	NewSession SessionFactory

	// ServeDir is the directory offered by the serve command when the
	// user does not name one.
	ServeDir string

	// IdleTimeout disconnects silent clients. Default: 30m.
	IdleTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:2323"
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 30 * time.Minute
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Server accepts telnet connections and runs one command loop each.
type Server struct {
	cfg Config

	mu sync.Mutex
	ln net.Listener
}

// NewServer creates a Server.
func NewServer(cfg Config) *Server {
	cfg.defaults()
	return &Server{cfg: cfg}
}

// ListenAndServe accepts connections until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("telnet: listen %s: %w", s.cfg.Addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.cfg.Logger.Info("telnet: listening", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("telnet: accept: %w", err)
		}
		go s.handle(ctx, conn)
	}
}

// Addr returns the bound listen address, useful with port 0.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	s.cfg.Logger.Info("telnet: connected", "remote", remote)
	defer s.cfg.Logger.Info("telnet: disconnected", "remote", remote)

	negotiate(conn)

	h := newHandler(s.cfg.NewSession(), conn, s.cfg.ServeDir, s.cfg.Logger)
	defer h.shutdown()

	h.banner()

	r := bufio.NewReader(conn)
	for {
		if ctx.Err() != nil {
			return
		}
		h.prompt()
		conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = stripTelnet(line)
		if quit := h.execute(ctx, strings.TrimSpace(line)); quit {
			return
		}
	}
}

// negotiate announces the character-at-a-time-free mode the UI needs:
// the client keeps local echo and line editing, the server suppresses
// go-ahead.
func negotiate(w io.Writer) {
	w.Write([]byte{
		cmdIAC, cmdWONT, optEcho,
		cmdIAC, cmdWILL, optSGA,
		cmdIAC, cmdWONT, optLinemode,
	})
}

// stripTelnet removes IAC command sequences and control bytes from one
// input line.
func stripTelnet(line string) string {
	b := []byte(line)
	var out []byte
	for i := 0; i < len(b); i++ {
		if b[i] == cmdIAC {
			if i+1 >= len(b) {
				break
			}
			switch b[i+1] {
			case cmdSB:
				// Skip subnegotiation through IAC SE.
				j := i + 2
				for j+1 < len(b) && !(b[j] == cmdIAC && b[j+1] == cmdSE) {
					j++
				}
				i = j + 1
			case cmdWILL, cmdWONT, cmdDO, cmdDONT:
				i += 2
			default:
				i++
			}
			continue
		}
		if b[i] == '\r' || b[i] < 32 && b[i] != '\t' {
			continue
		}
		out = append(out, b[i])
	}
	return string(out)
}
