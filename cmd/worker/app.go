package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexivid/lexivid/internal/config"
	"github.com/lexivid/lexivid/internal/events"
	"github.com/lexivid/lexivid/internal/generation"
	"github.com/lexivid/lexivid/internal/pipeline"
	"github.com/lexivid/lexivid/internal/platform/captiontool"
	"github.com/lexivid/lexivid/internal/platform/gemini"
	"github.com/lexivid/lexivid/internal/platform/postgres"
	"github.com/lexivid/lexivid/internal/queue"
	"github.com/lexivid/lexivid/internal/service"
	"github.com/lexivid/lexivid/internal/store"
	"golang.org/x/time/rate"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	jobStore        store.JobStore
	materialStore   store.MaterialStore
	stateStore      store.StateStore
	expressionStore store.ExpressionStore

	// Services
	queueService    *queue.Service
	materialService service.MaterialService

	// Event system
	eventEmitter events.EventEmitter

	// Background processing
	worker *queue.Worker
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies that must be established before
// application wiring: configuration, logger and database connection.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Stores and the shared transaction runner
	transactor := store.NewSQLTransactor(db)
	app.jobStore = postgres.NewPostgresJobStore(db, logger)
	app.materialStore = postgres.NewPostgresMaterialStore(db, logger)
	app.stateStore = postgres.NewPostgresStateStore(db, logger)
	app.expressionStore = postgres.NewPostgresExpressionStore(db, logger)

	// Caption provider
	captionClient := captiontool.NewClient(cfg.Captions, logger)

	// LLM generator. An empty API key disables the provider; reevaluation
	// and example generation then fall back to heuristics.
	var generator generation.TextGenerator
	if cfg.LLM.GeminiAPIKey != "" {
		g, err := gemini.NewGenerator(ctx, logger.With("component", "llm_generator"), cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
		}
		generator = g
		logger.Info("LLM generator initialized", "model", cfg.LLM.ModelName)
	} else {
		logger.Warn("no LLM API key configured, running with heuristics only")
	}

	var limiter *rate.Limiter
	if cfg.LLM.RequestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.LLM.RequestsPerSec), 1)
	}

	clock := queue.SystemClock()

	// Pipeline step runner
	runner := pipeline.NewRunner(
		transactor,
		app.stateStore,
		app.materialStore,
		app.expressionStore,
		captionClient,
		generator,
		limiter,
		clock,
		logger,
	)

	// Queue machinery
	baseBackoff := time.Duration(cfg.Queue.BaseBackoffSeconds) * time.Second
	lockTimeout := time.Duration(cfg.Queue.LockTimeoutSeconds) * time.Second

	dispatcher := queue.NewDispatcher(transactor, app.jobStore, clock, baseBackoff, lockTimeout, logger)
	executor := queue.NewExecutor(
		transactor,
		app.jobStore,
		app.materialStore,
		runner,
		clock,
		baseBackoff,
		cfg.Queue.MaxAttempts,
		pipeline.CurrentVersion,
		logger,
	)
	reclaimer := queue.NewReclaimer(transactor, app.jobStore, clock, lockTimeout, cfg.Queue.ReclaimBatchSize, logger)

	app.queueService = queue.NewService(
		app.jobStore,
		dispatcher,
		executor,
		reclaimer,
		runner,
		clock,
		pipeline.CurrentVersion,
		logger,
	)

	// Event system: submitting a material emits an event whose handler
	// performs the idempotent enqueue.
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(queue.NewEnqueueEventHandler(app.queueService, logger))
	app.eventEmitter = emitter

	var err error
	app.materialService, err = service.NewMaterialService(app.materialStore, transactor, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create material service: %w", err)
	}

	// Background worker daemon
	app.worker = queue.NewWorker(app.queueService, queue.WorkerConfig{
		WorkerCount:  cfg.Queue.WorkerCount,
		BatchLimit:   cfg.Queue.BatchLimit,
		PollInterval: time.Duration(cfg.Queue.PollIntervalSeconds) * time.Second,
	}, logger)

	logger.Info("application initialized")
	return app, nil
}

// Run starts the background worker and the HTTP server, blocking until
// shutdown completes.
func (app *application) Run(ctx context.Context) error {
	app.worker.Start()

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.worker != nil {
		app.worker.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
