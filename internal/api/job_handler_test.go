package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexivid/lexivid/internal/api"
	"github.com/lexivid/lexivid/internal/mocks"
	"github.com/lexivid/lexivid/internal/queue"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// jobFixture wires a real queue service onto in-memory stores behind the
// job handler's routes.
type jobFixture struct {
	jobs    *mocks.MemJobStore
	clock   *mocks.FakeClock
	service *queue.Service
	router  http.Handler
}

func newJobFixture(t *testing.T) *jobFixture {
	t.Helper()

	f := &jobFixture{
		jobs:  mocks.NewMemJobStore(),
		clock: mocks.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	}

	tx := mocks.NewMemTransactor()
	materials := mocks.NewMemMaterialStore()
	runner := &mocks.MockStepRunner{Steps: []string{"meta", "persist"}}
	log := testLogger()

	baseBackoff := 30 * time.Second
	lockTimeout := 10 * time.Minute

	dispatcher := queue.NewDispatcher(tx, f.jobs, f.clock, baseBackoff, lockTimeout, log)
	executor := queue.NewExecutor(tx, f.jobs, materials, runner, f.clock, baseBackoff, 3, "v1", log)
	reclaimer := queue.NewReclaimer(tx, f.jobs, f.clock, lockTimeout, 50, log)
	f.service = queue.NewService(f.jobs, dispatcher, executor, reclaimer, runner, f.clock, "v1", log)

	handler := api.NewJobHandler(f.service, 10)
	r := chi.NewRouter()
	r.Get("/api/jobs/{id}", handler.GetJob)
	r.Post("/api/jobs/{id}/run", handler.RunJob)
	r.Post("/api/queue/dispatch", handler.Dispatch)
	r.Post("/api/queue/reclaim", handler.Reclaim)
	f.router = r
	return f
}

func TestGetJobEndpoint(t *testing.T) {
	t.Parallel()
	f := newJobFixture(t)

	jobID, err := f.service.Enqueue(context.Background(), "mat-1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/jobs/"+jobID, nil)
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body api.JobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, jobID, body.ID)
	assert.Equal(t, "queued", body.Status)
	assert.Equal(t, "mat-1", body.TargetID)
	assert.Equal(t, "meta", body.Step)
}

func TestGetJobEndpointNotFound(t *testing.T) {
	t.Parallel()
	f := newJobFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/jobs/material_pipeline:none:v1", nil)
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Job not found")
}

func TestDispatchEndpoint(t *testing.T) {
	t.Parallel()
	f := newJobFixture(t)

	jobID, err := f.service.Enqueue(context.Background(), "mat-1")
	require.NoError(t, err)

	// No body: defaults apply.
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/queue/dispatch", nil)
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body api.DispatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{jobID}, body.LockedJobIDs)
	assert.Zero(t, body.Reclaimed)
}

func TestDispatchEndpointEmptyQueue(t *testing.T) {
	t.Parallel()
	f := newJobFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/queue/dispatch",
		strings.NewReader(`{"limit": 5, "worker_id": "ops-1"}`))
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reclaimed": 0, "locked_job_ids": []}`, w.Body.String())
}

func TestDispatchEndpointRejectsExcessiveLimit(t *testing.T) {
	t.Parallel()
	f := newJobFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/queue/dispatch", strings.NewReader(`{"limit": 500}`))
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunJobEndpointConflictWhenNotLocked(t *testing.T) {
	t.Parallel()
	f := newJobFixture(t)

	jobID, err := f.service.Enqueue(context.Background(), "mat-1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/jobs/"+jobID+"/run", nil)
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "not currently held")
}

func TestReclaimEndpoint(t *testing.T) {
	t.Parallel()
	f := newJobFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/queue/reclaim", nil)
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reclaimed": 0}`, w.Body.String())
}
