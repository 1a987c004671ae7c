package main

import (
	"context"
	"fmt"

	"stock-analysis/src/config"
	"stock-analysis/src/interfaces"
	"stock-analysis/src/logger"
	"stock-analysis/src/storage"
)

// -----------------------------------------------------------------------------

// setupConfig loads the config named by -config and builds the root logger.
func setupConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, logger.NewLogger(cfg.LogLevel, cfg.Name), nil
}

// -----------------------------------------------------------------------------

// setupDatabase opens the configured store and makes sure the table exists.
func setupDatabase(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (interfaces.IDatabase, error) {
	db, err := storage.NewDatabase(cfg.Storage, appLogger.Named(cfg.Storage.DBType))
	if err != nil {
		appLogger.Error("Failed to init db: %v", err)
		return nil, err
	}
	if err := db.Initialize(ctx); err != nil {
		appLogger.Error("Failed to migrate db: %v", err)
		db.Close()
		return nil, err
	}
	return db, nil
}
