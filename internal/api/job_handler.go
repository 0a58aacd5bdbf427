package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/lexivid/lexivid/internal/api/shared"
	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/queue"
)

// DispatchRequest represents the request body for a manual dispatch cycle.
// Both fields are optional; zero values fall back to server defaults.
type DispatchRequest struct {
	Limit    int    `json:"limit"     validate:"omitempty,min=1,max=100"`
	WorkerID string `json:"worker_id" validate:"omitempty,min=1"`
}

// DispatchResponse summarizes one dispatch cycle.
type DispatchResponse struct {
	Reclaimed    int      `json:"reclaimed"`
	LockedJobIDs []string `json:"locked_job_ids"`
}

// JobResponse represents the response data for a queue job.
type JobResponse struct {
	ID              string     `json:"id"`
	Type            string     `json:"type"`
	TargetID        string     `json:"target_id"`
	PipelineVersion string     `json:"pipeline_version"`
	Status          string     `json:"status"`
	Step            string     `json:"step"`
	Attempt         int        `json:"attempt"`
	NextRunAt       time.Time  `json:"next_run_at"`
	LockedBy        string     `json:"locked_by,omitempty"`
	LockedAt        *time.Time `json:"locked_at,omitempty"`
	ErrorCode       string     `json:"error_code,omitempty"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// RunJobResponse reports the outcome of executing one pipeline step.
type RunJobResponse struct {
	JobID   string `json:"job_id"`
	Outcome string `json:"outcome"`
}

// ReclaimResponse reports how many stale jobs were requeued.
type ReclaimResponse struct {
	Reclaimed int `json:"reclaimed"`
}

// JobHandler exposes queue operations over HTTP: job inspection plus manual
// dispatch, step execution and stale-lock reclamation for operators.
type JobHandler struct {
	queueService *queue.Service
	defaultLimit int
	validator    *validator.Validate
}

// NewJobHandler creates a new JobHandler. defaultLimit bounds dispatch
// cycles that do not specify their own limit.
func NewJobHandler(queueService *queue.Service, defaultLimit int) *JobHandler {
	return &JobHandler{
		queueService: queueService,
		defaultLimit: defaultLimit,
		validator:    validator.New(),
	}
}

// GetJob handles GET /api/jobs/{id} requests.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if jobID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Job ID is required")
		return
	}

	job, err := h.queueService.GetJob(r.Context(), jobID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, jobToResponse(job))
}

// Dispatch handles POST /api/queue/dispatch requests, running one manual
// dispatch cycle. The worker daemon runs the same cycle on a timer; this
// endpoint exists for operators and tests.
func (h *JobHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	req := DispatchRequest{}
	if r.ContentLength > 0 {
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
		if err := h.validator.Struct(req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
			return
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = h.defaultLimit
	}
	workerID := req.WorkerID
	if workerID == "" {
		workerID = "api"
	}

	result, err := h.queueService.Dispatch(r.Context(), limit, workerID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	lockedIDs := result.LockedJobIDs
	if lockedIDs == nil {
		lockedIDs = []string{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DispatchResponse{
		Reclaimed:    result.Reclaimed,
		LockedJobIDs: lockedIDs,
	})
}

// RunJob handles POST /api/jobs/{id}/run requests, executing exactly one
// pipeline step of a locked job.
func (h *JobHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if jobID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Job ID is required")
		return
	}

	outcome, err := h.queueService.RunJob(r.Context(), jobID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RunJobResponse{
		JobID:   jobID,
		Outcome: string(outcome),
	})
}

// Reclaim handles POST /api/queue/reclaim requests, requeueing jobs whose
// locks have expired.
func (h *JobHandler) Reclaim(w http.ResponseWriter, r *http.Request) {
	reclaimed, err := h.queueService.ReclaimStale(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReclaimResponse{Reclaimed: reclaimed})
}

func jobToResponse(job *domain.Job) JobResponse {
	return JobResponse{
		ID:              job.ID,
		Type:            string(job.Type),
		TargetID:        job.TargetID,
		PipelineVersion: job.PipelineVersion,
		Status:          string(job.Status),
		Step:            job.Step,
		Attempt:         job.Attempt,
		NextRunAt:       job.NextRunAt,
		LockedBy:        job.LockedBy,
		LockedAt:        job.LockedAt,
		ErrorCode:       job.ErrorCode,
		ErrorMessage:    job.ErrorMessage,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
	}
}
