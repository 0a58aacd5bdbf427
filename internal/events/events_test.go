package events_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexivid/lexivid/internal/events"
)

func TestNewJobRequestEvent(t *testing.T) {
	t.Parallel()

	payload := struct {
		MaterialID string `json:"material_id"`
	}{MaterialID: "mat-1"}

	event, err := events.NewJobRequestEvent(events.EventTypeMaterialSubmitted, payload)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, events.EventTypeMaterialSubmitted, event.Type)
	assert.False(t, event.CreatedAt.IsZero())
	assert.JSONEq(t, `{"material_id": "mat-1"}`, string(event.Payload))
}

func TestNewJobRequestEventUnserializablePayload(t *testing.T) {
	t.Parallel()

	_, err := events.NewJobRequestEvent(events.EventTypeMaterialSubmitted, make(chan int))
	assert.Error(t, err)
}

func TestUnmarshalPayload(t *testing.T) {
	t.Parallel()

	event, err := events.NewJobRequestEvent(events.EventTypeMaterialSubmitted, map[string]string{
		"material_id": "mat-1",
	})
	require.NoError(t, err)

	var decoded struct {
		MaterialID string `json:"material_id"`
	}
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, "mat-1", decoded.MaterialID)
}
