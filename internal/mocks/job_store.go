package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/store"
)

// MemJobStore is an in-memory store.JobStore. It reproduces the semantics
// the queue depends on: conditional updates, duplicate rejection on create,
// and snapshot scans that return copies rather than live records.
type MemJobStore struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job

	// Optional error injection, returned before any state change.
	GetErr          error
	CreateErr       error
	UpdateErr       error
	ListDueErr      error
	ListStaleErr    error
	FindSiblingsErr error

	// UpdateFn, when set, replaces the default Update behavior.
	UpdateFn func(ctx context.Context, job *domain.Job, expectedStatus domain.JobStatus) error
}

// NewMemJobStore creates an empty in-memory job store.
func NewMemJobStore() *MemJobStore {
	return &MemJobStore{jobs: make(map[string]*domain.Job)}
}

func copyJob(j *domain.Job) *domain.Job {
	c := *j
	if j.LockedAt != nil {
		t := *j.LockedAt
		c.LockedAt = &t
	}
	return &c
}

// Get implements store.JobStore.
func (s *MemJobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrJobNotFound
	}
	return copyJob(j), nil
}

// Create implements store.JobStore.
func (s *MemJobStore) Create(ctx context.Context, job *domain.Job) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return store.ErrDuplicate
	}
	s.jobs[job.ID] = copyJob(job)
	return nil
}

// Update implements store.JobStore. The write only applies when the stored
// status still equals expectedStatus.
func (s *MemJobStore) Update(ctx context.Context, job *domain.Job, expectedStatus domain.JobStatus) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, job, expectedStatus)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.jobs[job.ID]
	if !ok {
		return store.ErrJobNotFound
	}
	if current.Status != expectedStatus {
		return store.ErrUpdateConflict
	}
	s.jobs[job.ID] = copyJob(job)
	return nil
}

// ListDue implements store.JobStore.
func (s *MemJobStore) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Job, error) {
	if s.ListDueErr != nil {
		return nil, s.ListDueErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*domain.Job
	for _, j := range s.jobs {
		if j.Status == domain.JobStatusQueued && !j.NextRunAt.After(now) {
			due = append(due, copyJob(j))
		}
	}
	sort.Slice(due, func(i, k int) bool { return due[i].NextRunAt.Before(due[k].NextRunAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// ListStale implements store.JobStore.
func (s *MemJobStore) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Job, error) {
	if s.ListStaleErr != nil {
		return nil, s.ListStaleErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stale []*domain.Job
	for _, j := range s.jobs {
		if j.Status != domain.JobStatusProcessing {
			continue
		}
		if j.LockedAt == nil || j.LockedAt.Before(cutoff) {
			stale = append(stale, copyJob(j))
		}
	}
	sort.Slice(stale, func(i, k int) bool {
		if stale[i].LockedAt == nil {
			return true
		}
		if stale[k].LockedAt == nil {
			return false
		}
		return stale[i].LockedAt.Before(*stale[k].LockedAt)
	})
	if len(stale) > limit {
		stale = stale[:limit]
	}
	return stale, nil
}

// FindSiblings implements store.JobStore.
func (s *MemJobStore) FindSiblings(
	ctx context.Context,
	jobType domain.JobType,
	targetID, pipelineVersion, excludeID string,
) ([]*domain.Job, error) {
	if s.FindSiblingsErr != nil {
		return nil, s.FindSiblingsErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var siblings []*domain.Job
	for _, j := range s.jobs {
		if j.ID == excludeID {
			continue
		}
		if j.Type != jobType || j.TargetID != targetID || j.PipelineVersion != pipelineVersion {
			continue
		}
		if j.Status == domain.JobStatusProcessing || j.Status == domain.JobStatusDone {
			siblings = append(siblings, copyJob(j))
		}
	}
	return siblings, nil
}

// WithTx implements store.JobStore. The fake has no transaction boundaries,
// so it returns itself.
func (s *MemJobStore) WithTx(tx *sql.Tx) store.JobStore {
	return s
}

// Put stores a job directly, bypassing Create semantics. Test setup helper.
func (s *MemJobStore) Put(job *domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = copyJob(job)
}

var _ store.JobStore = (*MemJobStore)(nil)
