package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/pokerbots/internal/transport"
)

// Server accepts bot connections and plays one match per connection.
type Server struct {
	cfg      MatchConfig
	strategy string
	logger   *log.Logger
	clock    quartz.Clock
	upgrader websocket.Upgrader
	matches  atomic.Int64
	wg       sync.WaitGroup
}

// NewServer creates a server that deals cfg to every client against the
// named house strategy.
func NewServer(cfg MatchConfig, strategy string, logger *log.Logger) (*Server, error) {
	if _, err := NewOpponent(strategy, 0); err != nil {
		return nil, err
	}
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	return &Server{
		cfg:      cfg,
		strategy: strategy,
		logger:   logger.WithPrefix("server"),
		clock:    quartz.NewReal(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Bots connect from anywhere
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}, nil
}

// Matches returns the number of matches started.
func (s *Server) Matches() int64 { return s.matches.Load() }

type lineConn interface {
	Conn
	Close() error
	RemoteAddr() string
}

// play runs a single match and closes conn.
func (s *Server) play(ctx context.Context, conn lineConn) {
	defer conn.Close()

	n := s.matches.Add(1)
	cfg := s.cfg
	cfg.Seed += n
	opponent, _ := NewOpponent(s.strategy, cfg.Seed)

	logger := s.logger.With("match", n, "remote", conn.RemoteAddr())
	logger.Info("Client connected", "opponent", opponent.Name())

	// Unblock the dealer's reads when the server shuts down.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	res, err := NewDealer(cfg, opponent, s.clock, logger).Play(ctx, conn)
	if err != nil {
		logger.Warn("Match ended early", "rounds", res.Rounds, "bankroll", res.Bankroll, "error", err)
		return
	}
	logger.Info("Client finished", "rounds", res.Rounds, "bankroll", res.Bankroll)
}

// Serve accepts TCP clients on ln until ctx is done, then waits for
// running matches to end.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	s.logger.Info("Starting line server", "addr", ln.Addr())
	for {
		c, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.play(ctx, transport.NewLine(c, 10*time.Second))
		}()
	}
}

// Handler serves websocket clients on /ws and a health check on /health.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.handleWebSocket(ctx, w, r)
	})
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}
	s.play(ctx, transport.NewWebSocket(conn, 10*time.Second))
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}
