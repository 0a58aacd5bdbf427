package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/store"
)

// Outcome is the result of one executor invocation, telling the dispatch
// loop whether to re-enqueue the same job for its next step within the
// current cycle or wait.
type Outcome string

// Possible executor outcomes
const (
	OutcomeDone       Outcome = "done"
	OutcomeProcessing Outcome = "processing"
	OutcomeFailed     Outcome = "failed"
)

// ErrJobNotProcessing is returned when an executor is invoked for a job it
// does not hold: the job is missing, was reclaimed, or already finished.
var ErrJobNotProcessing = errors.New("job is not in processing state")

// StepRunner executes one named pipeline step against persisted intermediate
// state and exposes the step ordering. Implemented by pipeline.Runner.
type StepRunner interface {
	// RunStep executes exactly the named step for the given target and
	// pipeline version.
	RunStep(ctx context.Context, step, targetID, pipelineVersion string) error

	// NextStep returns the successor of the given step, or false when the
	// step is the last one.
	NextStep(step string) (string, bool)

	// FirstStep returns the first step of the pipeline.
	FirstStep() string
}

// Executor wraps step execution with the transactional state transition:
// idempotency checks, cursor advancement with lock renewal, and conversion
// of step failure into a scheduled retry or terminal failure.
type Executor struct {
	tx             store.Transactor
	jobs           store.JobStore
	materials      store.MaterialStore
	runner         StepRunner
	clock          Clock
	baseBackoff    time.Duration
	maxAttempts    int
	currentVersion string
	logger         *slog.Logger
}

// NewExecutor creates an Executor. currentVersion is the canonical pipeline
// version used by the idempotency short-circuit.
func NewExecutor(
	tx store.Transactor,
	jobs store.JobStore,
	materials store.MaterialStore,
	runner StepRunner,
	clock Clock,
	baseBackoff time.Duration,
	maxAttempts int,
	currentVersion string,
	logger *slog.Logger,
) *Executor {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Executor{
		tx:             tx,
		jobs:           jobs,
		materials:      materials,
		runner:         runner,
		clock:          clock,
		baseBackoff:    baseBackoff,
		maxAttempts:    maxAttempts,
		currentVersion: currentVersion,
		logger:         logger.With("component", "executor"),
	}
}

// Run loads the job and executes its current step, then transactionally
// advances the job's cursor and the material's visible status. A job that is
// not currently processing is rejected without side effects. Step failure is
// converted into a backoff retry, or a terminal failure once the attempt
// budget is exhausted.
func (e *Executor) Run(ctx context.Context, jobID string) (Outcome, error) {
	job, err := e.jobs.Get(ctx, jobID)
	if err != nil {
		if store.IsNotFound(err) {
			return OutcomeFailed, fmt.Errorf("%w: %s", ErrJobNotProcessing, jobID)
		}
		return OutcomeFailed, err
	}
	if job.Status != domain.JobStatusProcessing {
		return OutcomeFailed, fmt.Errorf("%w: %s is %s", ErrJobNotProcessing, jobID, job.Status)
	}

	log := e.logger.With("job_id", job.ID, "step", job.Step, "attempt", job.Attempt)
	log.Info("executing pipeline step")

	if stepErr := e.runner.RunStep(ctx, job.Step, job.TargetID, job.PipelineVersion); stepErr != nil {
		log.Error("pipeline step failed", "error", stepErr)
		if err := e.failJob(ctx, job.ID, stepErr); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeFailed, stepErr
	}

	return e.advanceJob(ctx, job.ID)
}

// advanceJob re-reads the job and its material inside a transaction and
// moves the step cursor forward: short-circuiting to done when a duplicate
// execution already finished the whole pipeline, completing both records
// when the last step ran, or advancing the cursor and renewing the lock.
func (e *Executor) advanceJob(ctx context.Context, jobID string) (Outcome, error) {
	outcome := OutcomeFailed

	err := e.tx.Transact(ctx, func(ctx context.Context, tx *sql.Tx) error {
		jobs := e.jobs.WithTx(tx)
		materials := e.materials.WithTx(tx)

		job, err := jobs.Get(ctx, jobID)
		if err != nil {
			return err
		}
		if job.Status != domain.JobStatusProcessing {
			// Reclaimed or resolved by another actor mid-step; the step's
			// own writes are idempotent, so drop the advancement.
			return nil
		}

		material, err := materials.Get(ctx, job.TargetID)
		if err != nil && !store.IsNotFound(err) {
			return err
		}

		now := e.clock.Now()

		if material != nil &&
			material.Status == domain.MaterialStatusReady &&
			material.PipelineVersion == job.PipelineVersion &&
			job.PipelineVersion == e.currentVersion {
			// A concurrent duplicate already finished the whole pipeline at
			// this version; complete the job without re-deriving next steps.
			e.completeJob(job, now)
			if err := jobs.Update(ctx, job, domain.JobStatusProcessing); err != nil {
				return err
			}
			outcome = OutcomeDone
			return nil
		}

		next, ok := e.runner.NextStep(job.Step)
		if !ok {
			completed := job.Step
			e.completeJob(job, now)
			if err := jobs.Update(ctx, job, domain.JobStatusProcessing); err != nil {
				return err
			}
			if material != nil {
				material.Status = domain.MaterialStatusReady
				material.PipelineVersion = job.PipelineVersion
				material.Progress = domain.PipelineProgress{
					LastCompletedStep: completed,
					UpdatedAt:         now,
				}
				material.UpdatedAt = now
				if err := materials.Update(ctx, material); err != nil {
					return err
				}
			}
			outcome = OutcomeDone
			return nil
		}

		completed := job.Step
		job.Step = next
		job.LockedAt = &now // lock renewal keeps long pipelines from being reclaimed mid-flight
		job.UpdatedAt = now
		if err := jobs.Update(ctx, job, domain.JobStatusProcessing); err != nil {
			return err
		}
		if material != nil {
			material.Status = domain.MaterialStatusProcessing
			material.Progress = domain.PipelineProgress{
				CurrentStep:       next,
				LastCompletedStep: completed,
				UpdatedAt:         now,
			}
			material.UpdatedAt = now
			if err := materials.Update(ctx, material); err != nil {
				return err
			}
		}
		outcome = OutcomeProcessing
		return nil
	})
	if err != nil {
		return OutcomeFailed, err
	}
	return outcome, nil
}

// completeJob marks the job done and releases its lock, clearing any
// recorded error from earlier attempts.
func (e *Executor) completeJob(job *domain.Job, now time.Time) {
	job.Status = domain.JobStatusDone
	job.LockedBy = ""
	job.ErrorCode = ""
	job.ErrorMessage = ""
	job.UpdatedAt = now
}

// failJob converts a step failure into a retry or a terminal failure. The
// attempt counter only increases; at maxAttempts the job becomes permanently
// failed with no further scheduling, and the material is left visibly
// failed. The lock is released in both outcomes.
func (e *Executor) failJob(ctx context.Context, jobID string, stepErr error) error {
	return e.tx.Transact(ctx, func(ctx context.Context, tx *sql.Tx) error {
		jobs := e.jobs.WithTx(tx)
		materials := e.materials.WithTx(tx)

		job, err := jobs.Get(ctx, jobID)
		if err != nil {
			return err
		}
		if job.Status != domain.JobStatusProcessing {
			return nil
		}

		now := e.clock.Now()
		job.Attempt++
		job.LockedBy = ""
		job.ErrorCode = domain.ErrorCodeStepFailed
		job.ErrorMessage = stepErr.Error()
		job.UpdatedAt = now

		terminal := job.Attempt >= e.maxAttempts
		if terminal {
			job.Status = domain.JobStatusFailed
		} else {
			job.Status = domain.JobStatusQueued
			job.NextRunAt = now.Add(Backoff(e.baseBackoff, job.Attempt))
		}

		if err := jobs.Update(ctx, job, domain.JobStatusProcessing); err != nil {
			if errors.Is(err, store.ErrUpdateConflict) {
				return nil
			}
			return err
		}

		if terminal {
			e.logger.Error("job permanently failed",
				"job_id", job.ID,
				"attempts", job.Attempt,
				"error", stepErr)
			material, err := materials.Get(ctx, job.TargetID)
			if store.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return err
			}
			material.Status = domain.MaterialStatusFailed
			material.UpdatedAt = now
			return materials.Update(ctx, material)
		}

		e.logger.Warn("job scheduled for retry",
			"job_id", job.ID,
			"attempt", job.Attempt,
			"next_run_at", job.NextRunAt)
		return nil
	})
}
