package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/adgm-corporate-agent/internal/adapters/cli"
	"github.com/kirillkom/adgm-corporate-agent/internal/bootstrap"
	"github.com/kirillkom/adgm-corporate-agent/internal/config"
	"github.com/kirillkom/adgm-corporate-agent/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	format := cfg.LogFormat
	if os.Getenv("LOG_FORMAT") == "" {
		format = "text"
	}
	logger := logging.NewLoggerTo(os.Stderr, "adgmctl", cfg.LogLevel, format)
	slog.SetDefault(logger)

	cfg.Resilience = cfg.Resilience.WithoutBreaker()
	// The CLI never publishes rebuild requests.
	cfg.NATSURL = ""

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx, func(ctx context.Context) (*cli.Services, func(), error) {
		app, err := bootstrap.NewWithOptions(ctx, cfg, bootstrap.Options{Logger: logger})
		if err != nil {
			return nil, nil, err
		}
		return &cli.Services{
			Analyzer: app.Analyzer,
			Indexer:  app.Indexer,
			Searcher: app.Searcher,
			Reviewer: app.Reviewer,
			Exporter: app.Exporter,
		}, app.Close, nil
	})
	if err != nil {
		stop()
		os.Exit(1)
	}
}
