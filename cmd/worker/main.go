package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/fondolibro/fondolibro/internal/app"
	"github.com/fondolibro/fondolibro/internal/closing"
	"github.com/fondolibro/fondolibro/internal/ledger"
	"github.com/fondolibro/fondolibro/internal/platform/cache"
	"github.com/fondolibro/fondolibro/internal/platform/db"
	"github.com/fondolibro/fondolibro/internal/report"
	"github.com/fondolibro/fondolibro/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	ledgerRepo := ledger.NewRepository(pool)
	closureRepo := closing.NewRepository(pool)
	reportService := report.NewService(ledgerRepo, closureRepo, cfg.Epoch())
	reportCache := report.NewCache(redisClient, cfg.ReportCacheTTL)
	warmupJob := jobs.NewReportWarmupJob(reportService, reportCache, logger)

	worker, err := jobs.NewWorker(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, warmupJob)
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
