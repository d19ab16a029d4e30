package main

import (
	"context"
	"flag"
	"os"

	"github.com/maya/screenrank/internal/config"
	"github.com/maya/screenrank/internal/etl"
	"github.com/maya/screenrank/internal/logger"
	"github.com/maya/screenrank/internal/repository"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "screenrank-etl",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	datasetFlag := flag.String("dataset", "", "Run a single dataset (people, titles, ratings, credits) instead of the full pipeline")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	appLogger.WithFields(logger.Fields{
		"dataset":    *datasetFlag,
		"data_dir":   cfg.ETL.DataDir,
		"batch_size": cfg.ETL.BatchSize,
	}).Info("Starting pipeline")

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	runRepo := repository.NewRunRepository(db)
	fetcher := etl.NewSourceFetcher(&cfg.ETL)
	loader := etl.NewBatchLoader(db, &cfg.ETL)
	agg := etl.NewAggregationEngine(db)
	pipeline := etl.NewPipeline(fetcher, loader, agg, runRepo)

	ctx := logger.SetComponent(context.Background(), "etl")

	var result *etl.RunResult
	if *datasetFlag != "" {
		dataset, err := etl.ParseDataset(*datasetFlag)
		if err != nil {
			appLogger.WithError(err).Fatal("Invalid dataset")
		}
		result = pipeline.RunDataset(ctx, dataset)
	} else {
		result = pipeline.Run(ctx)
	}

	if !result.Success {
		appLogger.WithFields(logger.Fields{
			logger.FieldRunID:   result.RunID,
			logger.FieldRecords: result.RecordsProcessed,
		}).Errorf("Pipeline failed: %s", result.Error)
		os.Exit(1)
	}

	appLogger.WithFields(logger.Fields{
		logger.FieldRunID:      result.RunID,
		logger.FieldRecords:    result.RecordsProcessed,
		logger.FieldDurationMs: int64(result.DurationSeconds * 1000),
	}).Info("Pipeline completed")
}
