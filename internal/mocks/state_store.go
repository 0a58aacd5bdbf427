package mocks

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/store"
)

// MemStateStore is an in-memory store.StateStore. States are copied through
// a JSON round trip on both reads and writes, mirroring the JSONB column
// the real store persists to.
type MemStateStore struct {
	mu     sync.Mutex
	states map[string][]byte

	GetErr  error
	SaveErr error
}

// NewMemStateStore creates an empty in-memory state store.
func NewMemStateStore() *MemStateStore {
	return &MemStateStore{states: make(map[string][]byte)}
}

func stateKey(targetID, pipelineVersion string) string {
	return targetID + "|" + pipelineVersion
}

// Get implements store.StateStore.
func (s *MemStateStore) Get(ctx context.Context, targetID, pipelineVersion string) (*domain.PipelineState, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.states[stateKey(targetID, pipelineVersion)]
	if !ok {
		return nil, store.ErrStateNotFound
	}

	var state domain.PipelineState
	if err := json.Unmarshal(doc, &state); err != nil {
		return nil, err
	}
	if state.Candidates == nil {
		state.Candidates = make(map[string]*domain.Candidate)
	}
	return &state, nil
}

// Save implements store.StateStore.
func (s *MemStateStore) Save(ctx context.Context, state *domain.PipelineState) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}

	doc, err := json.Marshal(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[stateKey(state.TargetID, state.PipelineVersion)] = doc
	return nil
}

// WithTx implements store.StateStore.
func (s *MemStateStore) WithTx(tx *sql.Tx) store.StateStore {
	return s
}

var _ store.StateStore = (*MemStateStore)(nil)
