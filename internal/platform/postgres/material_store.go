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

// PostgresMaterialStore implements the store.MaterialStore interface using
// a PostgreSQL database as the storage backend.
type PostgresMaterialStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMaterialStore creates a new PostgreSQL implementation of the
// MaterialStore interface. If logger is nil, a default logger is used.
func NewPostgresMaterialStore(db store.DBTX, logger *slog.Logger) *PostgresMaterialStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresMaterialStore{
		db:     db,
		logger: logger.With(slog.String("component", "material_store")),
	}
}

// Ensure PostgresMaterialStore implements store.MaterialStore
var _ store.MaterialStore = (*PostgresMaterialStore)(nil)

// Get implements store.MaterialStore.Get
func (s *PostgresMaterialStore) Get(ctx context.Context, id string) (*domain.Material, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title, external_id, external_url, status,
			pipeline_version, pipeline_state, created_at, updated_at
		FROM materials
		WHERE id = $1
	`
	var (
		m            domain.Material
		version      sql.NullString
		progressJSON []byte
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID,
		&m.Title,
		&m.ExternalID,
		&m.ExternalURL,
		&m.Status,
		&version,
		&progressJSON,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMaterialNotFound
		}
		log.Error("failed to get material",
			slog.String("material_id", id),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get material: %w", err)
	}

	m.PipelineVersion = version.String
	if len(progressJSON) > 0 {
		if err := json.Unmarshal(progressJSON, &m.Progress); err != nil {
			return nil, fmt.Errorf("failed to decode pipeline state: %w", err)
		}
	}
	return &m, nil
}

// Create implements store.MaterialStore.Create
func (s *PostgresMaterialStore) Create(ctx context.Context, material *domain.Material) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := material.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	progressJSON, err := json.Marshal(material.Progress)
	if err != nil {
		return fmt.Errorf("failed to encode pipeline state: %w", err)
	}

	query := `
		INSERT INTO materials (id, title, external_id, external_url, status,
			pipeline_version, pipeline_state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(ctx, query,
		material.ID,
		material.Title,
		material.ExternalID,
		material.ExternalURL,
		material.Status,
		material.PipelineVersion,
		progressJSON,
		material.CreatedAt,
		material.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		log.Error("failed to create material",
			slog.String("material_id", material.ID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create material: %w", err)
	}
	return nil
}

// Update implements store.MaterialStore.Update
func (s *PostgresMaterialStore) Update(ctx context.Context, material *domain.Material) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	progressJSON, err := json.Marshal(material.Progress)
	if err != nil {
		return fmt.Errorf("failed to encode pipeline state: %w", err)
	}

	query := `
		UPDATE materials
		SET status = $1, pipeline_version = $2, pipeline_state = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(ctx, query,
		material.Status,
		material.PipelineVersion,
		progressJSON,
		material.UpdatedAt,
		material.ID,
	)
	if err != nil {
		log.Error("failed to update material",
			slog.String("material_id", material.ID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update material: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrMaterialNotFound
	}
	return nil
}

// WithTx implements store.MaterialStore.WithTx
func (s *PostgresMaterialStore) WithTx(tx *sql.Tx) store.MaterialStore {
	return &PostgresMaterialStore{db: tx, logger: s.logger}
}
