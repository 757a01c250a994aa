package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iseprep/backend/internal/api"
	"github.com/iseprep/backend/internal/backup"
	"github.com/iseprep/backend/internal/cache"
	"github.com/iseprep/backend/internal/config"
	"github.com/iseprep/backend/internal/domain"
	"github.com/iseprep/backend/internal/export"
	"github.com/iseprep/backend/internal/repository"
	"github.com/iseprep/backend/internal/repository/sqldb"
	"github.com/iseprep/backend/internal/service"
	"github.com/iseprep/backend/internal/storage"
	"github.com/iseprep/backend/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger.UseJSON()
	}

	db, err := sqldb.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	if err := sqldb.InitSchema(ctx, db); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize schema")
	}

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Report cache unavailable, running uncached")
		reportCache = cache.NewNoopReportCache()
	}

	stdRepo := repository.NewStandardQuantityRepository(db)
	stockRepo := repository.NewStockRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	masterRepo := repository.NewMasterRepository(db, domain.Locale(cfg.App.Locale))
	settingsRepo := repository.NewSettingsRepository(db)

	defaults := service.ReportDefaults{
		AMCMonths:          cfg.App.AMCMonths,
		ExpiryPeriodMonths: cfg.App.ExpiryPeriodMonths,
	}

	var backupStore storage.ObjectStorage
	if cfg.Backup.Endpoint != "" {
		store, err := storage.NewS3Client(cfg.Backup)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Backup upload target unavailable, local backups only")
		} else {
			backupStore = store
		}
	}

	services := &api.Services{
		OrderService:    service.NewOrderService(db, stdRepo, stockRepo, txRepo, masterRepo, settingsRepo, reportCache, defaults),
		ReportService:   service.NewReportService(db, stdRepo, stockRepo, txRepo, masterRepo, settingsRepo, reportCache, defaults),
		MovementService: service.NewMovementService(db, txRepo, masterRepo),
		BackupService:   backup.NewService(db, settingsRepo, cfg.Database.Path, cfg.App.BackupDir, []string{cfg.App.ExportDir}, backupStore),
		Exporter:        export.NewExporter(cfg.App.ExportDir),
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("driver", cfg.Database.Driver).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
