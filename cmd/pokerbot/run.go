package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lox/pokerbots/sdk"
	"github.com/lox/pokerbots/sdk/bots"
	"github.com/lox/pokerbots/sdk/config"
)

type RunCmd struct {
	Config      string   `short:"c" type:"path" help:"HCL file with a bot block"`
	EnvFile     []string `default:".env" help:"dotenv files to load before reading POKERBOT_* variables"`
	Server      string   `short:"s" help:"Server address: host:port, tcp://host:port or a ws:// URL"`
	Workers     int      `short:"w" help:"Decision workers (1-16)"`
	Strategy    string   `help:"Bot strategy (calling, random, aggressive, strength)"`
	Seed        *int64   `help:"Seed for the randomized strategies"`
	LogLevel    string   `help:"Log level (debug|info|warn|error)"`
	LogJSON     bool     `help:"Output JSON logs instead of console format"`
	MetricsAddr string   `help:"Serve Prometheus metrics on this address"`
}

// settings layers flags over the file and environment.
func (c *RunCmd) settings() (*config.BotConfig, error) {
	if err := config.LoadDotEnv(c.EnvFile...); err != nil {
		return nil, err
	}
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.Server != "" {
		cfg.Server = c.Server
	}
	if c.Workers != 0 {
		cfg.Workers = c.Workers
	}
	if c.Strategy != "" {
		cfg.Strategy = c.Strategy
	}
	if c.Seed != nil {
		cfg.Seed = *c.Seed
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	if c.MetricsAddr != "" {
		cfg.MetricsAddr = c.MetricsAddr
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, cfg.Validate()
}

func (c *RunCmd) Run() error {
	cfg, err := c.settings()
	if err != nil {
		return err
	}

	logger := createBotLogger(os.Stderr, cfg.LogLevel, c.LogJSON)
	if cfg.BotID != "" {
		logger = logger.With().Str("bot_id", cfg.BotID).Logger()
	}

	handler, err := bots.New(cfg.Strategy, cfg.Seed)
	if err != nil {
		return err
	}
	opts, err := cfg.RunOptions()
	if err != nil {
		return err
	}
	opts = append(opts, sdk.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, sdk.WithMetrics(sdk.NewMetrics(reg)))
		go serveMetrics(ctx, cfg.MetricsAddr, reg, logger)
	}

	logger.Info().
		Str("server", cfg.Server).
		Str("strategy", cfg.Strategy).
		Int("workers", cfg.Workers).
		Int64("seed", cfg.Seed).
		Msg("Connecting")

	conn, err := sdk.Dial(ctx, cfg.Server, 5*time.Second)
	if err != nil {
		return err
	}
	out, err := sdk.Run(ctx, conn, handler, cfg.Workers, opts...)
	printOutcome(os.Stdout, cfg, out)
	if errors.Is(err, sdk.ErrConnectionLost) && ctx.Err() != nil {
		logger.Info().Msg("Interrupted")
		return nil
	}
	return err
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger zerolog.Logger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("Serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("Metrics server failed")
	}
}
