package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/platform/logger"
	"github.com/lexivid/lexivid/internal/store"
)

// PostgresJobStore implements the store.JobStore interface using PostgreSQL.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a new PostgreSQL implementation of the
// JobStore interface. If logger is nil, a default logger is used.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure PostgresJobStore implements store.JobStore
var _ store.JobStore = (*PostgresJobStore)(nil)

const jobColumns = `id, type, target_id, pipeline_version, status, step,
	attempt, next_run_at, locked_by, locked_at, error_code, error_message,
	created_at, updated_at`

// Get implements store.JobStore.Get
func (s *PostgresJobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrJobNotFound
		}
		log.Error("failed to get job",
			slog.String("job_id", id),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// Create implements store.JobStore.Create
func (s *PostgresJobStore) Create(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.Type,
		job.TargetID,
		job.PipelineVersion,
		job.Status,
		job.Step,
		job.Attempt,
		job.NextRunAt,
		job.LockedBy,
		job.LockedAt,
		job.ErrorCode,
		job.ErrorMessage,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return store.ErrDuplicate
		}
		log.Error("failed to create job",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// Update implements store.JobStore.Update. The write is conditional on the
// stored status still matching expectedStatus; zero rows affected means
// another writer changed the job first.
func (s *PostgresJobStore) Update(ctx context.Context, job *domain.Job, expectedStatus domain.JobStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE jobs
		SET status = $1, step = $2, attempt = $3, next_run_at = $4,
			locked_by = $5, locked_at = $6, error_code = $7,
			error_message = $8, updated_at = $9
		WHERE id = $10 AND status = $11
	`
	result, err := s.db.ExecContext(ctx, query,
		job.Status,
		job.Step,
		job.Attempt,
		job.NextRunAt,
		job.LockedBy,
		job.LockedAt,
		job.ErrorCode,
		job.ErrorMessage,
		job.UpdatedAt,
		job.ID,
		expectedStatus,
	)
	if err != nil {
		log.Error("failed to update job",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Distinguish "gone" from "status changed under us".
		var exists bool
		checkErr := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`, job.ID).Scan(&exists)
		if checkErr == nil && !exists {
			return store.ErrJobNotFound
		}
		return store.ErrUpdateConflict
	}
	return nil
}

// ListDue implements store.JobStore.ListDue
func (s *PostgresJobStore) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = $1 AND next_run_at <= $2
		ORDER BY next_run_at ASC
		LIMIT $3
	`
	return s.queryJobs(ctx, query, domain.JobStatusQueued, now, limit)
}

// ListStale implements store.JobStore.ListStale
func (s *PostgresJobStore) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = $1 AND (locked_at IS NULL OR locked_at < $2)
		ORDER BY locked_at ASC NULLS FIRST
		LIMIT $3
	`
	return s.queryJobs(ctx, query, domain.JobStatusProcessing, cutoff, limit)
}

// FindSiblings implements store.JobStore.FindSiblings
func (s *PostgresJobStore) FindSiblings(
	ctx context.Context,
	jobType domain.JobType,
	targetID, pipelineVersion, excludeID string,
) ([]*domain.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE type = $1 AND target_id = $2 AND pipeline_version = $3
			AND id <> $4 AND status IN ($5, $6)
	`
	return s.queryJobs(ctx, query,
		jobType, targetID, pipelineVersion, excludeID,
		domain.JobStatusProcessing, domain.JobStatusDone)
}

// WithTx implements store.JobStore.WithTx
func (s *PostgresJobStore) WithTx(tx *sql.Tx) store.JobStore {
	return &PostgresJobStore{db: tx, logger: s.logger}
}

func (s *PostgresJobStore) queryJobs(ctx context.Context, query string, args ...any) ([]*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query jobs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}
	return jobs, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanJob.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job          domain.Job
		lockedAt     sql.NullTime
		errorCode    sql.NullString
		errorMessage sql.NullString
	)
	err := row.Scan(
		&job.ID,
		&job.Type,
		&job.TargetID,
		&job.PipelineVersion,
		&job.Status,
		&job.Step,
		&job.Attempt,
		&job.NextRunAt,
		&job.LockedBy,
		&lockedAt,
		&errorCode,
		&errorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lockedAt.Valid {
		t := lockedAt.Time
		job.LockedAt = &t
	}
	job.ErrorCode = errorCode.String
	job.ErrorMessage = errorMessage.String
	return &job, nil
}
