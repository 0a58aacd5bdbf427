// Package main implements the entry point for the lexivid worker, which
// serves the material submission API and runs the caption-mining pipeline
// over the durable job queue.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/lexivid/lexivid/internal/config"
	"github.com/lexivid/lexivid/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("worker failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"worker_count", cfg.Queue.WorkerCount,
		"llm_enabled", cfg.LLM.GeminiAPIKey != "")

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
