package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexivid/lexivid/internal/domain"
)

func TestNewMaterial(t *testing.T) {
	t.Parallel()

	material, err := domain.NewMaterial("How to Make Small Talk", "yt-abc", "")
	require.NoError(t, err)

	assert.NotEmpty(t, material.ID)
	assert.Equal(t, domain.MaterialStatusQueued, material.Status)
	assert.Empty(t, material.PipelineVersion, "version is stamped at pipeline completion")
	assert.False(t, material.CreatedAt.IsZero())
}

func TestNewMaterialValidation(t *testing.T) {
	t.Parallel()

	t.Run("empty title", func(t *testing.T) {
		t.Parallel()
		_, err := domain.NewMaterial("", "yt-abc", "")
		assert.ErrorIs(t, err, domain.ErrEmptyMaterialTitle)
	})

	t.Run("no external reference", func(t *testing.T) {
		t.Parallel()
		_, err := domain.NewMaterial("Title", "", "")
		assert.ErrorIs(t, err, domain.ErrEmptyMaterialExternal)
	})

	t.Run("url alone suffices", func(t *testing.T) {
		t.Parallel()
		_, err := domain.NewMaterial("Title", "", "https://example.com/watch/abc")
		assert.NoError(t, err)
	})
}

func TestMaterialUpdateStatus(t *testing.T) {
	t.Parallel()

	material, err := domain.NewMaterial("Title", "yt-abc", "")
	require.NoError(t, err)

	require.NoError(t, material.UpdateStatus(domain.MaterialStatusProcessing))
	assert.Equal(t, domain.MaterialStatusProcessing, material.Status)

	assert.ErrorIs(t, material.UpdateStatus(domain.MaterialStatus("archived")), domain.ErrInvalidMaterialStatus)
	assert.Equal(t, domain.MaterialStatusProcessing, material.Status, "invalid transition leaves status untouched")
}
