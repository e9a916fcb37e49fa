package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	config "task-tracker.com/task-tracker/internal/configs"
	repository "task-tracker.com/task-tracker/internal/repositories"
)

type app struct {
	cfg    config.Config
	logger *slog.Logger
	db     *gorm.DB
	repo   *repository.TaskRepository
}

// bootstrap loads configuration and opens a migrated store. Callers own
// app.close.
func bootstrap(ctx context.Context) (*app, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := config.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug(".env file not found, using environment variables")
	}

	db, err := config.NewDatabaseClient(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	repo := repository.NewTaskRepository(db, cfg.DatabaseTable)
	if err := repo.Migrate(ctx); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &app{cfg: cfg, logger: logger, db: db, repo: repo}, nil
}

func (a *app) close() {
	closeDB(a.db)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
