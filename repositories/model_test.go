package repositories

import (
	"testing"

	"github.com/perchdisplay/perch/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelFind(t *testing.T) {
	db := testDB(t)
	repository := NewModel(db)
	profile := testModel(t, db)

	found, err := repository.Find(profile.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "og_png", found.Name)

	missing, err := repository.Find(666)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestModelFindOrCreate(t *testing.T) {
	db := testDB(t)
	repository := NewModel(db)
	profile := testModel(t, db)

	existing, err := repository.FindOrCreate("og_png", models.Model{Label: "Ignored"})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, existing.ID)
	assert.Equal(t, "OG", existing.Label)

	created, err := repository.FindOrCreate("new_panel", models.Model{
		Label:  "New Panel",
		Width:  640,
		Height: 384,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "new_panel", created.Name)
}

func TestModelFindByDimensions(t *testing.T) {
	db := testDB(t)
	repository := NewModel(db)
	testModel(t, db)

	found, err := repository.FindByDimensions(800, 480)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "og_png", found.Name)

	missing, err := repository.FindByDimensions(640, 384)
	require.NoError(t, err)
	assert.Nil(t, missing)

	mismatched, err := repository.FindByDimensions(800, 600)
	require.NoError(t, err)
	assert.Nil(t, mismatched)
}
