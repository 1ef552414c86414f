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

	"github.com/hibiken/asynq"

	"github.com/asterix-health/opsboard/internal/app"
	dashboardhttp "github.com/asterix-health/opsboard/internal/dashboard/http"
	"github.com/asterix-health/opsboard/internal/dashboard/export"
	"github.com/asterix-health/opsboard/internal/dashboard/ui"
	"github.com/asterix-health/opsboard/internal/observability"
	"github.com/asterix-health/opsboard/internal/platform/cache"
	"github.com/asterix-health/opsboard/internal/shared"
	"github.com/asterix-health/opsboard/internal/view"
	"github.com/asterix-health/opsboard/jobs"
	"github.com/asterix-health/opsboard/report"
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

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	metrics.SetBuildInfo(cfg.AppEnv)

	dataService, closeData, err := app.OpenDataService(ctx, cfg, logger, redisClient, metrics.Registerer())
	if err != nil {
		logger.Error("open data source", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeData()

	sessionManager := shared.NewSessionManager(redisClient, "opsboard_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, logger)
	pdfExporter := &export.PDFExporter{Pages: templates, Renderer: reportClient}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	dashboardHandler := dashboardhttp.NewHandler(logger, dataService, templates, ui.SVG{}, ui.SVG{}, pdfExporter)
	dashboardHandler.WithJobs(jobClient)
	dashboardHandler.WithBrand(cfg.BrandName)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		DashboardHandler: dashboardHandler,
		ReportHandler:    reportHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
		Ready: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	if _, err := jobClient.EnqueueWarmup(ctx, "startup"); err != nil {
		logger.Warn("enqueue startup warmup", slog.Any("error", err))
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
