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

// Dispatcher claims a bounded batch of due, queued jobs for a worker. The
// scan that finds candidates is not atomic with the claim, so each claim
// runs in its own transaction that re-reads the job and re-validates it
// before writing; losing the race to another worker is a silent no-op.
type Dispatcher struct {
	tx          store.Transactor
	jobs        store.JobStore
	clock       Clock
	baseBackoff time.Duration
	lockTimeout time.Duration
	logger      *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(
	tx store.Transactor,
	jobs store.JobStore,
	clock Clock,
	baseBackoff time.Duration,
	lockTimeout time.Duration,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		tx:          tx,
		jobs:        jobs,
		clock:       clock,
		baseBackoff: baseBackoff,
		lockTimeout: lockTimeout,
		logger:      logger.With("component", "dispatcher"),
	}
}

// Dispatch selects up to limit queued jobs due at or before now, oldest-due
// first, and attempts to claim each one for workerID. Siblings sharing the
// job's logical identity are checked inside the claim transaction: a done
// sibling short-circuits the job to done without execution, an actively
// processing sibling defers it by one backoff unit, and otherwise the job is
// locked. Returns the ids actually locked by this call.
func (d *Dispatcher) Dispatch(ctx context.Context, limit int, workerID string) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	if workerID == "" {
		return nil, fmt.Errorf("worker id cannot be empty")
	}

	now := d.clock.Now()
	candidates, err := d.jobs.ListDue(ctx, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for due jobs: %w", err)
	}

	var locked []string
	for _, candidate := range candidates {
		id := candidate.ID
		err := d.tx.Transact(ctx, func(ctx context.Context, tx *sql.Tx) error {
			jobs := d.jobs.WithTx(tx)

			job, err := jobs.Get(ctx, id)
			if store.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return err
			}

			now := d.clock.Now()
			if job.Status != domain.JobStatusQueued || job.NextRunAt.After(now) {
				// Another worker beat this one to the claim.
				return nil
			}

			siblings, err := jobs.FindSiblings(ctx, job.Type, job.TargetID, job.PipelineVersion, job.ID)
			if err != nil {
				return err
			}

			switch ResolveDuplicates(siblings, now, d.lockTimeout) {
			case DuplicateDone:
				job.Status = domain.JobStatusDone
				job.LockedBy = ""
				job.ErrorCode = domain.ErrorCodeDuplicateJobSkipped
				job.UpdatedAt = now
				if err := d.updateQueued(ctx, jobs, job); err != nil {
					return err
				}
				d.logger.Info("skipped duplicate of completed job", "job_id", job.ID)

			case DuplicateActive:
				// An equivalent pipeline is running under a live lock; defer
				// by a single backoff unit rather than racing it.
				job.NextRunAt = now.Add(Backoff(d.baseBackoff, 1))
				job.UpdatedAt = now
				if err := d.updateQueued(ctx, jobs, job); err != nil {
					return err
				}
				d.logger.Debug("deferred job with active duplicate",
					"job_id", job.ID,
					"next_run_at", job.NextRunAt)

			default:
				job.Status = domain.JobStatusProcessing
				job.LockedBy = workerID
				job.LockedAt = &now
				job.UpdatedAt = now
				if err := jobs.Update(ctx, job, domain.JobStatusQueued); err != nil {
					if errors.Is(err, store.ErrUpdateConflict) {
						return nil
					}
					return err
				}
				locked = append(locked, job.ID)
			}

			return nil
		})
		if err != nil {
			d.logger.Error("failed to claim job",
				"job_id", id,
				"worker_id", workerID,
				"error", err)
		}
	}

	return locked, nil
}

// updateQueued writes the job conditionally on it still being queued,
// swallowing conflicts as lost races.
func (d *Dispatcher) updateQueued(ctx context.Context, jobs store.JobStore, job *domain.Job) error {
	if err := jobs.Update(ctx, job, domain.JobStatusQueued); err != nil {
		if errors.Is(err, store.ErrUpdateConflict) {
			return nil
		}
		return err
	}
	return nil
}
