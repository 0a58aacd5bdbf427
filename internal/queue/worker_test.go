package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerProcessesEnqueuedJob(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now, []string{"meta", "extract", "persist"})
	f.materials.Put(queuedMaterial("mat-1", now))

	id, err := f.service.Enqueue(context.Background(), "mat-1")
	require.NoError(t, err)

	// Long poll interval: only the immediate startup cycle should be needed.
	w := queue.NewWorker(f.service, queue.WorkerConfig{
		WorkerCount:  1,
		BatchLimit:   5,
		PollInterval: time.Hour,
	}, testLogger())

	w.Start()
	defer w.Stop()

	require.Eventually(t, func() bool {
		job, err := f.jobs.Get(context.Background(), id)
		if err != nil {
			return false
		}
		return job.Status == domain.JobStatusDone
	}, 5*time.Second, 10*time.Millisecond)

	material, err := f.materials.Get(context.Background(), "mat-1")
	require.NoError(t, err)
	assert.Equal(t, domain.MaterialStatusReady, material.Status)
}

func TestWorkerStopIsClean(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now, []string{"meta"})

	w := queue.NewWorker(f.service, queue.DefaultWorkerConfig(), testLogger())
	w.Start()
	w.Stop()
}

func TestWorkerIDIsStable(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now, []string{"meta"})

	w := queue.NewWorker(f.service, queue.DefaultWorkerConfig(), testLogger())
	assert.NotEmpty(t, w.WorkerID())
	assert.Equal(t, w.WorkerID(), w.WorkerID())
}
