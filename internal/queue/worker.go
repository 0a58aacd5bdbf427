package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// WorkerConfig holds configuration options for the polling worker daemon.
type WorkerConfig struct {
	// WorkerCount determines how many concurrent job workers to start.
	// If zero or negative, defaults to 1.
	WorkerCount int

	// BatchLimit is the maximum number of jobs locked per dispatch cycle.
	BatchLimit int

	// PollInterval is the time between dispatch cycles.
	PollInterval time.Duration
}

// DefaultWorkerConfig returns a WorkerConfig with reasonable defaults.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		WorkerCount:  2,
		BatchLimit:   10,
		PollInterval: 15 * time.Second,
	}
}

// Worker is the polling daemon that drives the queue: on every tick it runs
// one dispatch cycle (reclaim stale locks, lock due jobs) and hands the
// locked jobs to a pool of goroutines that step them to completion.
type Worker struct {
	service  *Service
	config   WorkerConfig
	workerID string

	jobs   chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewWorker creates a worker daemon around the queue service. The worker
// identity baked into job locks is derived from the hostname and pid so
// stale locks are attributable to a process.
func NewWorker(service *Service, config WorkerConfig, logger *slog.Logger) *Worker {
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
		config.WorkerCount = 1
	}
	if config.BatchLimit <= 0 {
		config.BatchLimit = DefaultWorkerConfig().BatchLimit
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultWorkerConfig().PollInterval
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "worker"
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		service:  service,
		config:   config,
		workerID: fmt.Sprintf("%s-%d", hostname, os.Getpid()),
		jobs:     make(chan string, config.BatchLimit),
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger.With("component", "queue_worker"),
	}
}

// WorkerID returns the lock identity used by this daemon.
func (w *Worker) WorkerID() string {
	return w.workerID
}

// Start launches the poll loop and the job workers. It returns immediately;
// call Stop to shut down.
func (w *Worker) Start() {
	w.logger.Info("starting queue worker",
		"worker_id", w.workerID,
		"worker_count", w.config.WorkerCount,
		"batch_limit", w.config.BatchLimit,
		"poll_interval", w.config.PollInterval)

	for i := 0; i < w.config.WorkerCount; i++ {
		w.wg.Add(1)
		go w.runWorker(i)
	}

	w.wg.Add(1)
	go w.pollLoop()
}

// Stop signals all goroutines to finish and waits for them. Jobs already
// being executed finish their current step; their locks expire and the
// reclaimer requeues anything left behind.
func (w *Worker) Stop() {
	w.logger.Info("stopping queue worker", "worker_id", w.workerID)
	w.cancel()
	w.wg.Wait()
	w.logger.Info("queue worker stopped", "worker_id", w.workerID)
}

// pollLoop runs one dispatch cycle per tick and feeds locked jobs to the
// worker pool. An immediate first cycle avoids waiting a full interval
// after startup.
func (w *Worker) pollLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	w.dispatchOnce()

	for {
		select {
		case <-w.ctx.Done():
			close(w.jobs)
			return
		case <-ticker.C:
			w.dispatchOnce()
		}
	}
}

func (w *Worker) dispatchOnce() {
	result, err := w.service.Dispatch(w.ctx, w.config.BatchLimit, w.workerID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		w.logger.Error("dispatch cycle failed", "error", err)
		return
	}

	if result.Reclaimed > 0 || len(result.LockedJobIDs) > 0 {
		w.logger.Info("dispatch cycle completed",
			"reclaimed", result.Reclaimed,
			"locked", len(result.LockedJobIDs))
	}

	for _, jobID := range result.LockedJobIDs {
		select {
		case <-w.ctx.Done():
			return
		case w.jobs <- jobID:
		}
	}
}

// runWorker consumes locked jobs and steps each one until it needs to wait:
// completion, failure, or a scheduled retry.
func (w *Worker) runWorker(id int) {
	defer w.wg.Done()

	log := w.logger.With("worker_index", id)
	log.Debug("job worker started")

	for jobID := range w.jobs {
		w.processJob(jobID, log)
	}

	log.Debug("job worker finished")
}

// processJob runs pipeline steps for one locked job. OutcomeProcessing
// means the job advanced and this worker still holds its renewed lock, so
// the next step runs immediately instead of waiting for another dispatch
// cycle.
func (w *Worker) processJob(jobID string, log *slog.Logger) {
	for {
		if w.ctx.Err() != nil {
			return
		}

		outcome, err := w.service.RunJob(w.ctx, jobID)
		if err != nil {
			// Step failures are recorded on the job itself; the error here
			// is for operator visibility only.
			log.Warn("job step did not complete",
				"job_id", jobID,
				"outcome", outcome,
				"error", err)
		}

		if outcome != OutcomeProcessing {
			log.Debug("job left execution loop",
				"job_id", jobID,
				"outcome", outcome)
			return
		}
	}
}
