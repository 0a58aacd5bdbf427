package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/lexivid/lexivid/internal/domain"
)

// JobStore defines the interface for persisting jobs. The scan methods
// (ListDue, ListStale) are snapshot reads: the jobs they return must be
// re-read inside a transaction and re-validated before any mutation, since
// the scan is not atomic with the claim.
type JobStore interface {
	// Get retrieves a job by id. Returns ErrJobNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Job, error)

	// Create persists a new job. Returns ErrDuplicate if a job with the
	// same id already exists; the existing record is left untouched.
	Create(ctx context.Context, job *domain.Job) error

	// Update writes the job's mutable fields conditionally: the write only
	// applies if the stored status still equals expectedStatus. Returns
	// ErrUpdateConflict if the condition fails and ErrJobNotFound if the
	// job is gone.
	Update(ctx context.Context, job *domain.Job, expectedStatus domain.JobStatus) error

	// ListDue returns up to limit queued jobs whose next_run_at is at or
	// before now, ordered oldest-due first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Job, error)

	// ListStale returns up to limit processing jobs whose locked_at is
	// missing or before cutoff.
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Job, error)

	// FindSiblings returns jobs sharing (type, target, pipeline version)
	// with a status of processing or done, excluding the given job id.
	// Used for duplicate detection inside claim transactions.
	FindSiblings(ctx context.Context, jobType domain.JobType, targetID, pipelineVersion, excludeID string) ([]*domain.Job, error)

	// WithTx returns a JobStore bound to the provided transaction so that
	// multiple operations share a single atomic unit of work.
	WithTx(tx *sql.Tx) JobStore
}
