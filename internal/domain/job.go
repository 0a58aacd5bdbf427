package domain

import (
	"errors"
	"fmt"
	"time"
)

// JobStatus represents the current state of a queued job.
type JobStatus string

// Possible job status values
const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusFailed     JobStatus = "failed"
)

// JobType identifies the kind of work a job performs.
type JobType string

// Job type constants
const (
	JobTypeMaterialPipeline JobType = "material_pipeline"
	JobTypeGlossaryGenerate JobType = "glossary_generate"
)

// Well-known error codes recorded on jobs by the queue machinery.
const (
	ErrorCodeStaleLockReclaimed  = "stale_lock_reclaimed"
	ErrorCodeDuplicateJobSkipped = "duplicate_job_skipped"
	ErrorCodeStepFailed          = "step_failed"
)

// Common validation errors for Job
var (
	ErrEmptyJobTargetID        = errors.New("job target ID cannot be empty")
	ErrEmptyJobPipelineVersion = errors.New("job pipeline version cannot be empty")
	ErrEmptyJobStep            = errors.New("job step cannot be empty")
	ErrInvalidJobType          = errors.New("invalid job type")
	ErrInvalidJobStatus        = errors.New("invalid job status")
)

// JobID derives the deterministic identifier for a job from its logical
// identity. Re-submitting the same logical work always maps to the same id,
// which is what makes enqueue idempotent.
func JobID(jobType JobType, targetID, pipelineVersion string) string {
	return fmt.Sprintf("%s:%s:%s", jobType, targetID, pipelineVersion)
}

// Job is a unit of scheduled, resumable work tied to one target entity and
// one pipeline version. The (Status, LockedBy, LockedAt) triple is only ever
// mutated inside a transaction that re-reads the job and confirms the
// expected prior status.
type Job struct {
	ID              string    `json:"id"`
	Type            JobType   `json:"type"`
	TargetID        string    `json:"target_id"`
	PipelineVersion string    `json:"pipeline_version"`
	Status          JobStatus `json:"status"`
	Step            string    `json:"step"`
	Attempt         int       `json:"attempt"`
	NextRunAt       time.Time `json:"next_run_at"`
	LockedBy        string    `json:"locked_by"`
	LockedAt        *time.Time `json:"locked_at,omitempty"`
	ErrorCode       string    `json:"error_code"`
	ErrorMessage    string    `json:"error_message"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewJob creates a queued job at the given first step with attempt zero.
// The id is derived from (type, target, pipeline version).
func NewJob(jobType JobType, targetID, pipelineVersion, firstStep string, now time.Time) (*Job, error) {
	j := &Job{
		ID:              JobID(jobType, targetID, pipelineVersion),
		Type:            jobType,
		TargetID:        targetID,
		PipelineVersion: pipelineVersion,
		Status:          JobStatusQueued,
		Step:            firstStep,
		Attempt:         0,
		NextRunAt:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := j.Validate(); err != nil {
		return nil, err
	}

	return j, nil
}

// Validate checks if the Job has valid data.
func (j *Job) Validate() error {
	if !isValidJobType(j.Type) {
		return ErrInvalidJobType
	}

	if j.TargetID == "" {
		return ErrEmptyJobTargetID
	}

	if j.PipelineVersion == "" {
		return ErrEmptyJobPipelineVersion
	}

	if j.Step == "" {
		return ErrEmptyJobStep
	}

	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}

	return nil
}

func isValidJobType(t JobType) bool {
	switch t {
	case JobTypeMaterialPipeline, JobTypeGlossaryGenerate:
		return true
	default:
		return false
	}
}

func isValidJobStatus(s JobStatus) bool {
	switch s {
	case JobStatusQueued, JobStatusProcessing, JobStatusDone, JobStatusFailed:
		return true
	default:
		return false
	}
}
