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

// Reclaimer requeues jobs stuck in processing past the lock timeout, making
// work orphaned by crashed workers eligible for re-dispatch without manual
// intervention.
type Reclaimer struct {
	tx          store.Transactor
	jobs        store.JobStore
	clock       Clock
	lockTimeout time.Duration
	batchSize   int
	logger      *slog.Logger
}

// NewReclaimer creates a Reclaimer scanning up to batchSize jobs per run.
func NewReclaimer(
	tx store.Transactor,
	jobs store.JobStore,
	clock Clock,
	lockTimeout time.Duration,
	batchSize int,
	logger *slog.Logger,
) *Reclaimer {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Reclaimer{
		tx:          tx,
		jobs:        jobs,
		clock:       clock,
		lockTimeout: lockTimeout,
		batchSize:   batchSize,
		logger:      logger.With("component", "reclaimer"),
	}
}

// Reclaim scans for stale-locked processing jobs and resets each one back to
// queued inside its own transaction, re-validating status and staleness
// against the freshly read row first. A job whose lock was renewed (or that
// finished) between the scan and the transaction is left alone. Returns the
// number of jobs reclaimed.
func (r *Reclaimer) Reclaim(ctx context.Context) (int, error) {
	now := r.clock.Now()
	candidates, err := r.jobs.ListStale(ctx, now.Add(-r.lockTimeout), r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to scan for stale jobs: %w", err)
	}

	reclaimed := 0
	for _, candidate := range candidates {
		id := candidate.ID
		err := r.tx.Transact(ctx, func(ctx context.Context, tx *sql.Tx) error {
			jobs := r.jobs.WithTx(tx)

			job, err := jobs.Get(ctx, id)
			if store.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return err
			}

			now := r.clock.Now()
			if job.Status != domain.JobStatusProcessing ||
				!IsLockStale(job.LockedAt, now, r.lockTimeout) {
				// A racing worker renewed the lock or finished the job.
				return nil
			}

			job.Status = domain.JobStatusQueued
			job.NextRunAt = now
			job.LockedBy = ""
			job.ErrorCode = domain.ErrorCodeStaleLockReclaimed
			job.UpdatedAt = now

			if err := jobs.Update(ctx, job, domain.JobStatusProcessing); err != nil {
				if errors.Is(err, store.ErrUpdateConflict) {
					return nil
				}
				return err
			}

			reclaimed++
			r.logger.Info("reclaimed stale job",
				"job_id", job.ID,
				"previous_holder", candidate.LockedBy,
				"attempt", job.Attempt)
			return nil
		})
		if err != nil {
			r.logger.Error("failed to reclaim job",
				"job_id", id,
				"error", err)
		}
	}

	return reclaimed, nil
}
