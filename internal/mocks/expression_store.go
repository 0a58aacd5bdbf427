package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/store"
)

// MemExpressionStore is an in-memory store.ExpressionStore.
type MemExpressionStore struct {
	mu          sync.Mutex
	expressions map[string]*domain.Expression

	GetErr    error
	UpsertErr error
}

// NewMemExpressionStore creates an empty in-memory expression store.
func NewMemExpressionStore() *MemExpressionStore {
	return &MemExpressionStore{expressions: make(map[string]*domain.Expression)}
}

func copyExpression(e *domain.Expression) *domain.Expression {
	c := *e
	return &c
}

// Get implements store.ExpressionStore.
func (s *MemExpressionStore) Get(ctx context.Context, id string) (*domain.Expression, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expressions[id]
	if !ok {
		return nil, store.ErrExpressionNotFound
	}
	return copyExpression(e), nil
}

// Upsert implements store.ExpressionStore, preserving the CreatedAt of a
// previously stored record with the same id.
func (s *MemExpressionStore) Upsert(ctx context.Context, expr *domain.Expression) error {
	if s.UpsertErr != nil {
		return s.UpsertErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := copyExpression(expr)
	if existing, ok := s.expressions[expr.ID]; ok {
		record.CreatedAt = existing.CreatedAt
	}
	s.expressions[expr.ID] = record
	return nil
}

// CountByMaterial implements store.ExpressionStore.
func (s *MemExpressionStore) CountByMaterial(ctx context.Context, materialID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, e := range s.expressions {
		if e.MaterialID == materialID {
			count++
		}
	}
	return count, nil
}

// WithTx implements store.ExpressionStore.
func (s *MemExpressionStore) WithTx(tx *sql.Tx) store.ExpressionStore {
	return s
}

var _ store.ExpressionStore = (*MemExpressionStore)(nil)
