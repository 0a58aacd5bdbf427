package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/lexivid/lexivid/internal/api/shared"
	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/service"
)

// SubmitMaterialRequest represents the request body for submitting a material.
// At least one of external_id and external_url must be provided.
type SubmitMaterialRequest struct {
	Title       string `json:"title"       validate:"required,min=1"`
	ExternalID  string `json:"external_id"`
	ExternalURL string `json:"external_url" validate:"omitempty,url"`
}

// MaterialResponse represents the response data for a material.
type MaterialResponse struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	ExternalID        string    `json:"external_id,omitempty"`
	ExternalURL       string    `json:"external_url,omitempty"`
	Status            string    `json:"status"`
	PipelineVersion   string    `json:"pipeline_version,omitempty"`
	CurrentStep       string    `json:"current_step,omitempty"`
	LastCompletedStep string    `json:"last_completed_step,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// MaterialHandler handles material-related HTTP requests.
type MaterialHandler struct {
	materialService service.MaterialService
	validator       *validator.Validate
}

// NewMaterialHandler creates a new MaterialHandler.
func NewMaterialHandler(materialService service.MaterialService) *MaterialHandler {
	return &MaterialHandler{
		materialService: materialService,
		validator:       validator.New(),
	}
}

// SubmitMaterial handles POST /api/materials requests. Processing happens
// asynchronously, so a successful submission returns 202 Accepted.
func (h *MaterialHandler) SubmitMaterial(w http.ResponseWriter, r *http.Request) {
	var req SubmitMaterialRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}
	if req.ExternalID == "" && req.ExternalURL == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Either external_id or external_url is required")
		return
	}

	material, err := h.materialService.SubmitMaterial(r.Context(), req.Title, req.ExternalID, req.ExternalURL)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, materialToResponse(material))
}

// GetMaterial handles GET /api/materials/{id} requests.
func (h *MaterialHandler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	materialID := chi.URLParam(r, "id")
	if materialID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Material ID is required")
		return
	}

	material, err := h.materialService.GetMaterial(r.Context(), materialID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, materialToResponse(material))
}

func materialToResponse(material *domain.Material) MaterialResponse {
	return MaterialResponse{
		ID:                material.ID,
		Title:             material.Title,
		ExternalID:        material.ExternalID,
		ExternalURL:       material.ExternalURL,
		Status:            string(material.Status),
		PipelineVersion:   material.PipelineVersion,
		CurrentStep:       material.Progress.CurrentStep,
		LastCompletedStep: material.Progress.LastCompletedStep,
		CreatedAt:         material.CreatedAt,
		UpdatedAt:         material.UpdatedAt,
	}
}
