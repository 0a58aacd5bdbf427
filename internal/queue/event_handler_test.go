package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/events"
	"github.com/lexivid/lexivid/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueEventHandlerEnqueuesJob(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now, []string{"meta", "persist"})
	handler := queue.NewEnqueueEventHandler(f.service, testLogger())

	event, err := events.NewJobRequestEvent(events.EventTypeMaterialSubmitted, struct {
		MaterialID string `json:"material_id"`
	}{MaterialID: "mat-1"})
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))

	job, err := f.jobs.Get(context.Background(), "material_pipeline:mat-1:v1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusQueued, job.Status)
}

func TestEnqueueEventHandlerIgnoresOtherEventTypes(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now, []string{"meta"})
	handler := queue.NewEnqueueEventHandler(f.service, testLogger())

	event, err := events.NewJobRequestEvent("unrelated_event", struct {
		MaterialID string `json:"material_id"`
	}{MaterialID: "mat-1"})
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))

	_, err = f.jobs.Get(context.Background(), "material_pipeline:mat-1:v1")
	assert.Error(t, err)
}

func TestEnqueueEventHandlerRejectsEmptyMaterialID(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now, []string{"meta"})
	handler := queue.NewEnqueueEventHandler(f.service, testLogger())

	event, err := events.NewJobRequestEvent(events.EventTypeMaterialSubmitted, struct {
		MaterialID string `json:"material_id"`
	}{})
	require.NoError(t, err)

	assert.Error(t, handler.HandleEvent(context.Background(), event))
}
