package main

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"futurisys/attrition-api/internal/config"
	"futurisys/attrition-api/internal/logging"
)

// bootstrap loads the configuration and a logger. Subcommands log to stderr
// so their stdout stays machine readable.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Server.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

func openDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := config.InitDatabase(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, closeFn, nil
}
