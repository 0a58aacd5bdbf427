package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/platform/logger"
	"github.com/lexivid/lexivid/internal/store"
)

// PostgresStateStore implements the store.StateStore interface. The whole
// scratch record is stored as one JSONB document keyed by
// (target_id, pipeline_version), matching its read-modify-write access
// pattern: only one worker holds the owning job's lock at a time.
type PostgresStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStateStore creates a new PostgreSQL implementation of the
// StateStore interface. If logger is nil, a default logger is used.
func NewPostgresStateStore(db store.DBTX, logger *slog.Logger) *PostgresStateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "state_store")),
	}
}

// Ensure PostgresStateStore implements store.StateStore
var _ store.StateStore = (*PostgresStateStore)(nil)

// Get implements store.StateStore.Get
func (s *PostgresStateStore) Get(ctx context.Context, targetID, pipelineVersion string) (*domain.PipelineState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT doc FROM pipeline_states
		WHERE target_id = $1 AND pipeline_version = $2
	`
	var doc []byte
	err := s.db.QueryRowContext(ctx, query, targetID, pipelineVersion).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStateNotFound
		}
		log.Error("failed to get pipeline state",
			slog.String("target_id", targetID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get pipeline state: %w", err)
	}

	var state domain.PipelineState
	if err := json.Unmarshal(doc, &state); err != nil {
		return nil, fmt.Errorf("failed to decode pipeline state: %w", err)
	}
	if state.Candidates == nil {
		state.Candidates = make(map[string]*domain.Candidate)
	}
	return &state, nil
}

// Save implements store.StateStore.Save
func (s *PostgresStateStore) Save(ctx context.Context, state *domain.PipelineState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode pipeline state: %w", err)
	}

	query := `
		INSERT INTO pipeline_states (target_id, pipeline_version, doc, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (target_id, pipeline_version)
		DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		state.TargetID,
		state.PipelineVersion,
		doc,
		state.UpdatedAt,
	); err != nil {
		log.Error("failed to save pipeline state",
			slog.String("target_id", state.TargetID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save pipeline state: %w", err)
	}
	return nil
}

// WithTx implements store.StateStore.WithTx
func (s *PostgresStateStore) WithTx(tx *sql.Tx) store.StateStore {
	return &PostgresStateStore{db: tx, logger: s.logger}
}
