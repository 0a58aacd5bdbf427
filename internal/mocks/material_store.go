package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/store"
)

// MemMaterialStore is an in-memory store.MaterialStore.
type MemMaterialStore struct {
	mu        sync.Mutex
	materials map[string]*domain.Material

	GetErr    error
	CreateErr error
	UpdateErr error
}

// NewMemMaterialStore creates an empty in-memory material store.
func NewMemMaterialStore() *MemMaterialStore {
	return &MemMaterialStore{materials: make(map[string]*domain.Material)}
}

func copyMaterial(m *domain.Material) *domain.Material {
	c := *m
	return &c
}

// Get implements store.MaterialStore.
func (s *MemMaterialStore) Get(ctx context.Context, id string) (*domain.Material, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.materials[id]
	if !ok {
		return nil, store.ErrMaterialNotFound
	}
	return copyMaterial(m), nil
}

// Create implements store.MaterialStore.
func (s *MemMaterialStore) Create(ctx context.Context, material *domain.Material) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.materials[material.ID]; exists {
		return store.ErrDuplicate
	}
	s.materials[material.ID] = copyMaterial(material)
	return nil
}

// Update implements store.MaterialStore.
func (s *MemMaterialStore) Update(ctx context.Context, material *domain.Material) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.materials[material.ID]; !ok {
		return store.ErrMaterialNotFound
	}
	s.materials[material.ID] = copyMaterial(material)
	return nil
}

// WithTx implements store.MaterialStore.
func (s *MemMaterialStore) WithTx(tx *sql.Tx) store.MaterialStore {
	return s
}

// Put stores a material directly. Test setup helper.
func (s *MemMaterialStore) Put(material *domain.Material) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials[material.ID] = copyMaterial(material)
}

var _ store.MaterialStore = (*MemMaterialStore)(nil)
