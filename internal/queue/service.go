package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/store"
)

// DispatchResult summarizes one dispatch cycle.
type DispatchResult struct {
	Reclaimed    int      `json:"reclaimed_count"`
	LockedJobIDs []string `json:"locked_job_ids"`
}

// Service is the thin application boundary over the queue machinery:
// idempotent enqueue, dispatch cycles, single-job execution and stale-lock
// reclamation.
type Service struct {
	jobs            store.JobStore
	dispatcher      *Dispatcher
	executor        *Executor
	reclaimer       *Reclaimer
	runner          StepRunner
	clock           Clock
	pipelineVersion string
	logger          *slog.Logger
}

// NewService assembles the queue service from its parts.
func NewService(
	jobs store.JobStore,
	dispatcher *Dispatcher,
	executor *Executor,
	reclaimer *Reclaimer,
	runner StepRunner,
	clock Clock,
	pipelineVersion string,
	logger *slog.Logger,
) *Service {
	return &Service{
		jobs:            jobs,
		dispatcher:      dispatcher,
		executor:        executor,
		reclaimer:       reclaimer,
		runner:          runner,
		clock:           clock,
		pipelineVersion: pipelineVersion,
		logger:          logger.With("component", "queue_service"),
	}
}

// Enqueue creates the material-pipeline job for the given target if absent
// and returns its id. The id is deterministic in (type, target, version), so
// re-submitting the same work never creates a second record.
func (s *Service) Enqueue(ctx context.Context, targetID string) (string, error) {
	now := s.clock.Now()
	job, err := domain.NewJob(
		domain.JobTypeMaterialPipeline,
		targetID,
		s.pipelineVersion,
		s.runner.FirstStep(),
		now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to build job: %w", err)
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			s.logger.Debug("job already enqueued", "job_id", job.ID)
			return job.ID, nil
		}
		return "", fmt.Errorf("failed to enqueue job: %w", err)
	}

	s.logger.Info("enqueued job", "job_id", job.ID, "target_id", targetID)
	return job.ID, nil
}

// Dispatch runs one cycle: reclaim stale locks, then lock up to limit due
// jobs for workerID.
func (s *Service) Dispatch(ctx context.Context, limit int, workerID string) (DispatchResult, error) {
	reclaimed, err := s.reclaimer.Reclaim(ctx)
	if err != nil {
		return DispatchResult{}, err
	}

	locked, err := s.dispatcher.Dispatch(ctx, limit, workerID)
	if err != nil {
		return DispatchResult{Reclaimed: reclaimed}, err
	}

	return DispatchResult{Reclaimed: reclaimed, LockedJobIDs: locked}, nil
}

// RunJob executes one pipeline step of the given job.
func (s *Service) RunJob(ctx context.Context, jobID string) (Outcome, error) {
	return s.executor.Run(ctx, jobID)
}

// ReclaimStale requeues jobs whose locks have expired and returns the count.
func (s *Service) ReclaimStale(ctx context.Context) (int, error) {
	return s.reclaimer.Reclaim(ctx)
}

// GetJob returns the current persisted state of a job.
func (s *Service) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	return s.jobs.Get(ctx, jobID)
}
