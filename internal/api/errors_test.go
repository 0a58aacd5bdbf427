package api_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/lexivid/lexivid/internal/api"
	"github.com/lexivid/lexivid/internal/queue"
	"github.com/lexivid/lexivid/internal/service"
	"github.com/lexivid/lexivid/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"job not found", store.ErrJobNotFound, http.StatusNotFound},
		{"material not found", store.ErrMaterialNotFound, http.StatusNotFound},
		{"service material not found", service.ErrMaterialNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", store.ErrJobNotFound), http.StatusNotFound},
		{"duplicate", store.ErrDuplicate, http.StatusConflict},
		{"update conflict", store.ErrUpdateConflict, http.StatusConflict},
		{"job not processing", queue.ErrJobNotProcessing, http.StatusConflict},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, api.MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Job not found", api.GetSafeErrorMessage(store.ErrJobNotFound))
	assert.Equal(t, "Material not found", api.GetSafeErrorMessage(service.ErrMaterialNotFound))
	assert.Equal(t, "Resource was modified concurrently", api.GetSafeErrorMessage(store.ErrUpdateConflict))
	assert.Equal(t, "Job is not currently held for execution", api.GetSafeErrorMessage(queue.ErrJobNotProcessing))

	// Internal details never pass through.
	msg := api.GetSafeErrorMessage(errors.New("pq: relation jobs does not exist"))
	assert.Equal(t, "An unexpected error occurred", msg)
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	type request struct {
		Title string `validate:"required"`
		URL   string `validate:"omitempty,url"`
	}

	v := validator.New()

	err := v.Struct(request{})
	assert.Equal(t, "Invalid Title: required field", api.SanitizeValidationError(err))

	err = v.Struct(request{Title: "ok", URL: "not a url"})
	assert.Equal(t, "Invalid URL: invalid URL format", api.SanitizeValidationError(err))

	assert.Equal(t, "Validation error", api.SanitizeValidationError(errors.New("something else")))
}
