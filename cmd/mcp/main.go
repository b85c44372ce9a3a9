package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/kirillkom/adgm-corporate-agent/internal/adapters/mcp"
	"github.com/kirillkom/adgm-corporate-agent/internal/bootstrap"
	"github.com/kirillkom/adgm-corporate-agent/internal/config"
	"github.com/kirillkom/adgm-corporate-agent/internal/observability/logging"
)

var version = "dev"

func main() {
	cfg := config.Load()
	// stdout carries the JSON-RPC stream.
	logger := logging.NewLoggerTo(os.Stderr, "mcp", cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if !cfg.MCPEnabled {
		logger.Info("mcp_disabled")
		return
	}
	cfg.NATSURL = ""

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewWithOptions(ctx, cfg, bootstrap.Options{Logger: logger})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	go app.WatchIndex(ctx, cfg.IndexReloadInterval)

	server := mcpadapter.NewServer(app.Analyzer, app.Searcher, version, logger)
	logger.Info("mcp_serving", "transport", "stdio", "index_chunks", app.Index.Stats().Chunks)
	if err := server.Serve(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		logger.Error("mcp_serve_failed", "error", err)
	}
}
