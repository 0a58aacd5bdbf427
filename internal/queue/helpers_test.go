package queue_test

import (
	"io"
	"log/slog"
	"time"

	"github.com/lexivid/lexivid/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// queuedJob builds a queued material-pipeline job due at now.
func queuedJob(targetID, step string, now time.Time) *domain.Job {
	return &domain.Job{
		ID:              domain.JobID(domain.JobTypeMaterialPipeline, targetID, "v1"),
		Type:            domain.JobTypeMaterialPipeline,
		TargetID:        targetID,
		PipelineVersion: "v1",
		Status:          domain.JobStatusQueued,
		Step:            step,
		NextRunAt:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// processingJob builds a processing job locked by holder at lockedAt.
func processingJob(targetID, step, holder string, lockedAt time.Time) *domain.Job {
	at := lockedAt
	return &domain.Job{
		ID:              domain.JobID(domain.JobTypeMaterialPipeline, targetID, "v1"),
		Type:            domain.JobTypeMaterialPipeline,
		TargetID:        targetID,
		PipelineVersion: "v1",
		Status:          domain.JobStatusProcessing,
		Step:            step,
		NextRunAt:       lockedAt,
		LockedBy:        holder,
		LockedAt:        &at,
		CreatedAt:       lockedAt,
		UpdatedAt:       lockedAt,
	}
}

// queuedMaterial builds a material in the queued state.
func queuedMaterial(id string, now time.Time) *domain.Material {
	return &domain.Material{
		ID:         id,
		Title:      "Test Material",
		ExternalID: "ext-" + id,
		Status:     domain.MaterialStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
