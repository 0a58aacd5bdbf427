package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/events"
	"github.com/lexivid/lexivid/internal/store"
)

// MaterialService provides material-related operations.
type MaterialService interface {
	// SubmitMaterial creates a new material and emits the event that
	// enqueues its processing job.
	SubmitMaterial(ctx context.Context, title, externalID, externalURL string) (*domain.Material, error)

	// GetMaterial retrieves a material by its ID.
	GetMaterial(ctx context.Context, materialID string) (*domain.Material, error)
}

type materialServiceImpl struct {
	materials    store.MaterialStore
	tx           store.Transactor
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewMaterialService creates a new MaterialService.
// It returns an error if any of the required dependencies are nil.
func NewMaterialService(
	materials store.MaterialStore,
	tx store.Transactor,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (MaterialService, error) {
	if materials == nil {
		return nil, &MaterialServiceError{Operation: "create_service", Message: "materials cannot be nil"}
	}
	if tx == nil {
		return nil, &MaterialServiceError{Operation: "create_service", Message: "tx cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &MaterialServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &materialServiceImpl{
		materials:    materials,
		tx:           tx,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "material_service"),
	}, nil
}

// SubmitMaterial creates a new material in the queued state and emits a
// material-submitted event. The event handler performs the idempotent job
// enqueue, so resubmitting the same material is harmless.
func (s *materialServiceImpl) SubmitMaterial(
	ctx context.Context,
	title, externalID, externalURL string,
) (*domain.Material, error) {
	material, err := domain.NewMaterial(title, externalID, externalURL)
	if err != nil {
		s.logger.Error("failed to create material object", "error", err)
		return nil, NewMaterialServiceError("submit_material", "failed to create material object", err)
	}

	err = s.tx.Transact(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.materials.WithTx(tx).Create(ctx, material); err != nil {
			s.logger.Error("failed to create material in transaction",
				"error", err,
				"material_id", material.ID)
			return NewMaterialServiceError("submit_material", "failed to save material", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("material created with queued status", "material_id", material.ID)

	payload := struct {
		MaterialID string `json:"material_id"`
	}{
		MaterialID: material.ID,
	}

	event, err := events.NewJobRequestEvent(events.EventTypeMaterialSubmitted, payload)
	if err != nil {
		s.logger.Error("failed to create material submitted event",
			"error", err,
			"material_id", material.ID)
		return nil, NewMaterialServiceError("submit_material", "failed to create event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit material submitted event",
			"error", err,
			"material_id", material.ID,
			"event_id", event.ID)
		return nil, NewMaterialServiceError("submit_material", "failed to emit event", err)
	}

	s.logger.Info("material submitted event emitted",
		"material_id", material.ID,
		"event_id", event.ID)

	return material, nil
}

// GetMaterial retrieves a material by its ID.
func (s *materialServiceImpl) GetMaterial(ctx context.Context, materialID string) (*domain.Material, error) {
	material, err := s.materials.Get(ctx, materialID)
	if err != nil {
		if errors.Is(err, store.ErrMaterialNotFound) {
			return nil, ErrMaterialNotFound
		}
		s.logger.Error("failed to retrieve material",
			"error", err,
			"material_id", materialID)
		return nil, NewMaterialServiceError("get_material", "failed to retrieve material", err)
	}

	return material, nil
}
