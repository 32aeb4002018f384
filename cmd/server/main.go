package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/reliefops/relief-api/internal/config"
	"github.com/reliefops/relief-api/internal/repository/mongodb"
	"github.com/reliefops/relief-api/internal/repository/sheets"
	"github.com/reliefops/relief-api/internal/scheduler"
	"github.com/reliefops/relief-api/internal/server/handlers"
	"github.com/reliefops/relief-api/internal/server/router"
	"github.com/reliefops/relief-api/internal/service/availability"
	"github.com/reliefops/relief-api/internal/service/digest"
	"github.com/reliefops/relief-api/internal/service/donation"
	"github.com/reliefops/relief-api/pkg/clients/notifier"
	"github.com/reliefops/relief-api/pkg/logger"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Env))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB, logger.Named(baseLogger, "repo.mongodb"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := mongoRepo.EnsureIndexes(context.Background()); err != nil {
		baseLogger.Warn("failed to ensure mongodb indexes", zap.Error(err))
	}

	availabilitySvc := availability.NewService(mongoRepo, mongoRepo, mongoRepo, cfg.Engine.BatchConcurrency, logger.Named(baseLogger, "svc.availability"))
	donationSvc := donation.NewService(mongoRepo, logger.Named(baseLogger, "svc.donation"))

	var exporter digest.Exporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = sheetsRepo
	} else {
		baseLogger.Warn("google sheets not configured, digest export disabled")
	}

	var sender notifier.Client
	if cfg.Notifier.Enabled() {
		sender = notifier.NewClient(cfg.Notifier)
	} else {
		baseLogger.Warn("digest webhook not configured, digest delivery disabled")
	}

	digestSvc := digest.NewService(mongoRepo, availabilitySvc, exporter, sender, logger.Named(baseLogger, "svc.digest"))

	sched, err := scheduler.NewScheduler(cfg.Digest, digestSvc, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	engine := router.New(
		handlers.NewAvailabilityHandler(availabilitySvc, logger.Named(baseLogger, "handlers.availability")),
		handlers.NewDonationHandler(donationSvc, logger.Named(baseLogger, "handlers.donation")),
		mongoRepo,
		mongoRepo,
		cfg.Env,
		logger.Named(baseLogger, "router"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
