package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/pokerbots/internal/server"
)

type ServeCmd struct {
	Config   string `short:"c" default:"pokerbot-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Listen address (overrides config)"`
	Strategy string `help:"House strategy: calling, aggressive or random (overrides config)"`
	Rounds   int    `help:"Rounds per match (overrides config)"`
	Seed     *int64 `help:"Deck seed (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Strategy != "" {
		cfg.Opponent.Strategy = c.Strategy
	}
	if c.Rounds != 0 {
		cfg.Match.Rounds = c.Rounds
	}
	if c.Seed != nil {
		cfg.Match.Seed = *c.Seed
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := createServerLogger(cfg.Server.LogLevel)
	match, err := cfg.MatchConfig()
	if err != nil {
		return err
	}
	srv, err := server.NewServer(match, cfg.Opponent.Strategy, logger)
	if err != nil {
		return err
	}

	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting dealer",
		"addr", ln.Addr(),
		"rounds", match.Rounds,
		"opponent", cfg.Opponent.Strategy,
		"time_bank", match.TimeBank)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(gctx, ln) })

	if httpAddr := cfg.GetHTTPAddress(); httpAddr != "" {
		hs := &http.Server{Addr: httpAddr, Handler: srv.Handler(gctx), ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("Serving websocket clients", "addr", httpAddr)
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return hs.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Info("Dealer stopped", "matches", srv.Matches())
	return err
}
