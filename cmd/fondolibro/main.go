package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fondolibro/fondolibro/internal/app"
	"github.com/fondolibro/fondolibro/internal/auth"
	"github.com/fondolibro/fondolibro/internal/closing"
	closinghttp "github.com/fondolibro/fondolibro/internal/closing/http"
	"github.com/fondolibro/fondolibro/internal/ledger"
	ledgerhttp "github.com/fondolibro/fondolibro/internal/ledger/http"
	"github.com/fondolibro/fondolibro/internal/platform/cache"
	"github.com/fondolibro/fondolibro/internal/platform/db"
	"github.com/fondolibro/fondolibro/internal/profile"
	profilehttp "github.com/fondolibro/fondolibro/internal/profile/http"
	"github.com/fondolibro/fondolibro/internal/report"
	reporthttp "github.com/fondolibro/fondolibro/internal/report/http"
	"github.com/fondolibro/fondolibro/internal/shared"
	"github.com/fondolibro/fondolibro/internal/summary"
	summaryhttp "github.com/fondolibro/fondolibro/internal/summary/http"
	"github.com/fondolibro/fondolibro/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
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

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())

	authService := auth.NewService(cfg.AdminEmail, cfg.AdminPasswordHash, logger)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	epoch := cfg.Epoch()

	ledgerRepo := ledger.NewRepository(pool)
	closureRepo := closing.NewRepository(pool)

	closingService := closing.NewService(ledgerRepo, closureRepo, epoch, logger)

	events := ledger.NewEvents()
	ledgerService := ledger.NewService(ledgerRepo, closingService, events, logger)

	reportCache := report.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := report.NewService(ledgerRepo, closureRepo, epoch)

	warmupClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := warmupClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	closingService.WithReportInvalidator(reportCache)
	closingService.WithWarmupEnqueuer(warmupClient)
	ledgerService.WithReportInvalidator(reportCache)
	ledgerService.WithWarmupEnqueuer(warmupClient)

	profileRepo := profile.NewRepository(pool)
	profileService := profile.NewService(profileRepo, logger)

	summaryService := summary.NewService(cfg.SummaryModel, cfg.CurrencyCode, logger)

	ledgerHandler := ledgerhttp.NewHandler(logger, ledgerService, shared.RequireAdmin)
	closingHandler := closinghttp.NewHandler(logger, closingService, shared.RequireAdmin)
	reportHandler := reporthttp.NewHandler(logger, reportService, reportCache)
	profileHandler := profilehttp.NewHandler(logger, profileService, shared.RequireAdmin)
	summaryHandler := summaryhttp.NewHandler(logger, summaryService, ledgerService, closingService, shared.RequireAdmin)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		AuthHandler:    authHandler,
		LedgerHandler:  ledgerHandler,
		ClosingHandler: closingHandler,
		ReportHandler:  reportHandler,
		ProfileHandler: profileHandler,
		SummaryHandler: summaryHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
