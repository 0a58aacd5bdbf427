package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lexivid/lexivid/internal/events"
)

// EnqueueEventHandler implements the events.EventHandler interface,
// converting material-submitted events into idempotent job enqueues.
type EnqueueEventHandler struct {
	service *Service
	logger  *slog.Logger
}

// NewEnqueueEventHandler creates an event handler that enqueues pipeline
// jobs through the given service.
func NewEnqueueEventHandler(service *Service, logger *slog.Logger) *EnqueueEventHandler {
	return &EnqueueEventHandler{
		service: service,
		logger:  logger.With("component", "enqueue_event_handler"),
	}
}

// HandleEvent processes material-submitted events by enqueueing the
// pipeline job for the material. Other event types are ignored.
func (h *EnqueueEventHandler) HandleEvent(ctx context.Context, event *events.JobRequestEvent) error {
	if event.Type != events.EventTypeMaterialSubmitted {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload struct {
		MaterialID string `json:"material_id"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if payload.MaterialID == "" {
		return fmt.Errorf("event %s has empty material_id", event.ID)
	}

	jobID, err := h.service.Enqueue(ctx, payload.MaterialID)
	if err != nil {
		h.logger.Error("failed to enqueue job",
			"error", err,
			"material_id", payload.MaterialID,
			"event_id", event.ID)
		return err
	}

	h.logger.Info("job enqueued from event",
		"job_id", jobID,
		"material_id", payload.MaterialID,
		"event_id", event.ID)
	return nil
}

// Ensure EnqueueEventHandler implements events.EventHandler
var _ events.EventHandler = (*EnqueueEventHandler)(nil)
