// cmd/api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/warewolf/demand-engine/internal/api"
	"github.com/warewolf/demand-engine/internal/cache"
	"github.com/warewolf/demand-engine/internal/config"
	"github.com/warewolf/demand-engine/internal/detector"
	"github.com/warewolf/demand-engine/internal/forecast"
	"github.com/warewolf/demand-engine/internal/notify"
	"github.com/warewolf/demand-engine/internal/repository/postgres"
	"github.com/warewolf/demand-engine/internal/service"
	"github.com/warewolf/demand-engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize repositories
	saleRepo := postgres.NewSaleRepository(db)
	anomalyRepo := postgres.NewAnomalyRepository(db)
	itemRepo := postgres.NewItemRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Initialize cache
	anomalyCache, err := cache.NewAnomalyCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("cache unavailable, continuing without it")
		anomalyCache = cache.NewNoopAnomalyCache()
	}

	// Initialize services
	scanDefaults := detector.Config{
		LookbackDays:  cfg.Scan.LookbackDays,
		RecentDays:    cfg.Scan.RecentDays,
		MinPoints:     cfg.Scan.MinPoints,
		RollingWindow: cfg.Scan.RollingWindow,
		MinHistory:    cfg.Scan.MinHistory,
		ZLow:          cfg.Scan.ZLow,
		ZMed:          cfg.Scan.ZMed,
		ZHigh:         cfg.Scan.ZHigh,
		Workers:       cfg.Scan.Workers,
	}
	notifier := notify.NewNotifier(itemRepo, notificationRepo, cfg.Scan.NotifyCap)
	anomalyService := service.NewAnomalyService(saleRepo, anomalyRepo, notifier, anomalyCache)
	forecastService := service.NewForecastService(saleRepo, itemRepo,
		forecast.Config{
			LookbackDays: cfg.Forecast.LookbackDays,
			HorizonDays:  cfg.Forecast.HorizonDays,
			BacktestDays: cfg.Forecast.BacktestDays,
		},
		time.Duration(cfg.Forecast.TimeoutSeconds)*time.Second,
	)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		AnomalyService:  anomalyService,
		ForecastService: forecastService,
		ScanDefaults:    scanDefaults,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
