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

	"github.com/kirillkom/adgm-corporate-agent/internal/bootstrap"
	"github.com/kirillkom/adgm-corporate-agent/internal/config"
	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
	"github.com/kirillkom/adgm-corporate-agent/internal/observability/logging"
	"github.com/kirillkom/adgm-corporate-agent/internal/observability/metrics"
)

const rebuildTimeout = 15 * time.Minute

func main() {
	cfg := config.Load()
	logger := logging.NewLogger("worker", cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if cfg.NATSURL == "" {
		logger.Error("worker_requires_nats", "hint", "set NATS_URL")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	app, err := bootstrap.NewWithOptions(ctx, cfg, bootstrap.Options{
		Logger:   logger,
		Observer: workerMetrics,
	})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()
	workerMetrics.SetIndexStats(app.Index.Stats())

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject, "metrics_addr", metricsServer.Addr)
	err = app.Queue.SubscribeRebuildRequested(ctx, func(handlerCtx context.Context, req domain.RebuildRequest) error {
		rebuildCtx, cancel := context.WithTimeout(handlerCtx, rebuildTimeout)
		defer cancel()

		start := time.Now()
		workerMetrics.StartRebuild(req.RequestedAt)
		err := app.Indexer.HandleRebuildRequest(rebuildCtx, req)
		workerMetrics.FinishRebuild(time.Since(start), err)
		workerMetrics.SetIndexStats(app.Index.Stats())
		return err
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
