package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/adgm-corporate-agent/internal/adapters/http"
	"github.com/kirillkom/adgm-corporate-agent/internal/bootstrap"
	"github.com/kirillkom/adgm-corporate-agent/internal/config"
	"github.com/kirillkom/adgm-corporate-agent/internal/observability/logging"
	"github.com/kirillkom/adgm-corporate-agent/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewLogger("api", cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics("api", httpadapter.Routes...)
	app, err := bootstrap.NewWithOptions(ctx, cfg, bootstrap.Options{
		Logger:   logger,
		Observer: httpMetrics,
	})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	go app.WatchIndex(ctx, cfg.IndexReloadInterval)

	router := httpadapter.NewRouter(cfg, app.Analyzer, app.Searcher, app.Rebuilds, app.Reviewer, app.Exporter).
		WithMetrics(httpMetrics).
		WithLogger(logger)
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening",
			"addr", server.Addr,
			"index_chunks", app.Index.Stats().Chunks,
			"rebuild_queue", app.Queue != nil,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
}
