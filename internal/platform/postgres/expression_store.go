package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/platform/logger"
	"github.com/lexivid/lexivid/internal/store"
)

// PostgresExpressionStore implements the store.ExpressionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresExpressionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresExpressionStore creates a new PostgreSQL implementation of the
// ExpressionStore interface. If logger is nil, a default logger is used.
func NewPostgresExpressionStore(db store.DBTX, logger *slog.Logger) *PostgresExpressionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresExpressionStore{
		db:     db,
		logger: logger.With(slog.String("component", "expression_store")),
	}
}

// Ensure PostgresExpressionStore implements store.ExpressionStore
var _ store.ExpressionStore = (*PostgresExpressionStore)(nil)

// Get implements store.ExpressionStore.Get
func (s *PostgresExpressionStore) Get(ctx context.Context, id string) (*domain.Expression, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, text, explanation, example, score, material_id,
			created_at, updated_at
		FROM expressions
		WHERE id = $1
	`
	var e domain.Expression
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID,
		&e.Text,
		&e.Explanation,
		&e.Example,
		&e.Score,
		&e.MaterialID,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrExpressionNotFound
		}
		log.Error("failed to get expression",
			slog.String("expression_id", id),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get expression: %w", err)
	}
	return &e, nil
}

// Upsert implements store.ExpressionStore.Upsert. On conflict the mutable
// fields are replaced while created_at keeps its original value, so repeated
// persist runs converge on one record per expression id.
func (s *PostgresExpressionStore) Upsert(ctx context.Context, expr *domain.Expression) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO expressions (id, text, explanation, example, score,
			material_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			explanation = EXCLUDED.explanation,
			example = EXCLUDED.example,
			score = EXCLUDED.score,
			material_id = EXCLUDED.material_id,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		expr.ID,
		expr.Text,
		expr.Explanation,
		expr.Example,
		expr.Score,
		expr.MaterialID,
		expr.CreatedAt,
		expr.UpdatedAt,
	); err != nil {
		log.Error("failed to upsert expression",
			slog.String("expression_id", expr.ID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to upsert expression: %w", err)
	}
	return nil
}

// CountByMaterial implements store.ExpressionStore.CountByMaterial
func (s *PostgresExpressionStore) CountByMaterial(ctx context.Context, materialID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expressions WHERE material_id = $1`,
		materialID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expressions: %w", err)
	}
	return count, nil
}

// WithTx implements store.ExpressionStore.WithTx
func (s *PostgresExpressionStore) WithTx(tx *sql.Tx) store.ExpressionStore {
	return &PostgresExpressionStore{db: tx, logger: s.logger}
}
