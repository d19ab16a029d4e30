package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maya/screenrank/internal/api"
	"github.com/maya/screenrank/internal/config"
	"github.com/maya/screenrank/internal/etl"
	"github.com/maya/screenrank/internal/logger"
	"github.com/maya/screenrank/internal/repository"
)

func main() {
	// Initialize logger first (env-driven, with rotation in non-local envs)
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	scoreRepo := repository.NewScoreRepository(db)
	runRepo := repository.NewRunRepository(db)

	// Initialize pipeline components
	fetcher := etl.NewSourceFetcher(&cfg.ETL)
	loader := etl.NewBatchLoader(db, &cfg.ETL)
	agg := etl.NewAggregationEngine(db)

	// One orchestrator per started run
	newPipeline := func() *etl.Pipeline {
		return etl.NewPipeline(fetcher, loader, agg, runRepo)
	}

	// Setup router
	router := api.SetupRouter(db, scoreRepo, runRepo, agg, newPipeline, cfg, appLogger)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
