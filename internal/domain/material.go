package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaterialStatus represents the aggregate processing state of a material
// as visible to the application.
type MaterialStatus string

// Possible material status values
const (
	MaterialStatusQueued     MaterialStatus = "queued"
	MaterialStatusProcessing MaterialStatus = "processing"
	MaterialStatusReady      MaterialStatus = "ready"
	MaterialStatusFailed     MaterialStatus = "failed"
)

// Common validation errors for Material
var (
	ErrEmptyMaterialID        = errors.New("material ID cannot be empty")
	ErrEmptyMaterialTitle     = errors.New("material title cannot be empty")
	ErrInvalidMaterialStatus  = errors.New("invalid material status")
	ErrEmptyMaterialExternal  = errors.New("material must have an external ID or URL")
)

// PipelineProgress is the material-visible summary of pipeline progress.
// It is updated in the same transaction as the owning job's step cursor so
// the two never disagree.
type PipelineProgress struct {
	CurrentStep       string    `json:"current_step"`
	LastCompletedStep string    `json:"last_completed_step"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Material represents a piece of submitted media whose captions are mined
// for expression candidates. The pipeline core reads and writes only the
// status, pipeline version stamp and progress summary; everything else is
// owned by the surrounding application.
type Material struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	ExternalID      string           `json:"external_id"`
	ExternalURL     string           `json:"external_url"`
	Status          MaterialStatus   `json:"status"`
	PipelineVersion string           `json:"pipeline_version"`
	Progress        PipelineProgress `json:"pipeline_state"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewMaterial creates a new Material in the queued state.
// Returns an error if validation fails.
func NewMaterial(title, externalID, externalURL string) (*Material, error) {
	m := &Material{
		ID:          uuid.New().String(),
		Title:       title,
		ExternalID:  externalID,
		ExternalURL: externalURL,
		Status:      MaterialStatusQueued,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks if the Material has valid data.
func (m *Material) Validate() error {
	if m.ID == "" {
		return ErrEmptyMaterialID
	}

	if m.Title == "" {
		return ErrEmptyMaterialTitle
	}

	if m.ExternalID == "" && m.ExternalURL == "" {
		return ErrEmptyMaterialExternal
	}

	if !isValidMaterialStatus(m.Status) {
		return ErrInvalidMaterialStatus
	}

	return nil
}

// UpdateStatus updates the material's status and the UpdatedAt timestamp.
// Returns an error if the new status is invalid.
func (m *Material) UpdateStatus(status MaterialStatus) error {
	if !isValidMaterialStatus(status) {
		return ErrInvalidMaterialStatus
	}

	m.Status = status
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func isValidMaterialStatus(status MaterialStatus) bool {
	switch status {
	case MaterialStatusQueued,
		MaterialStatusProcessing,
		MaterialStatusReady,
		MaterialStatusFailed:
		return true
	default:
		return false
	}
}
