package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-meal-planner/internal/catalog"
	"mcp-meal-planner/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadSet(t *testing.T) {
	s := newTestStorage(t)
	set := catalog.Default()

	require.NoError(t, s.SaveSet(set))

	loaded, err := s.LoadSet()
	require.NoError(t, err)
	assert.Equal(t, set, loaded)

	n, err := s.CountItems()
	require.NoError(t, err)
	assert.Equal(t, set.Breakfast.Len()+set.Lunch.Len()+set.Dinner.Len(), n)
}

func TestSaveCatalog_Replaces(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SaveCatalog(models.Lunch, catalog.FoodCatalog{"soup": {"tomato": 74, "lentil": 180}}))
	require.NoError(t, s.SaveCatalog(models.Lunch, catalog.FoodCatalog{"bread": {"rye": 83}}))

	c, err := s.LoadCatalog(models.Lunch)
	require.NoError(t, err)
	assert.Equal(t, catalog.FoodCatalog{"bread": {"rye": 83}}, c)
}

func TestSaveCatalog_RejectsInvalid(t *testing.T) {
	s := newTestStorage(t)

	err := s.SaveCatalog(models.Dinner, catalog.FoodCatalog{"x": {"y": -3}})

	assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
}

func TestLoadCatalog_Empty(t *testing.T) {
	s := newTestStorage(t)

	c, err := s.LoadCatalog(models.Breakfast)

	require.NoError(t, err)
	assert.Empty(t, c)
}

func TestSeed(t *testing.T) {
	s := newTestStorage(t)
	first := catalog.Set{
		Breakfast: catalog.FoodCatalog{"fruit": {"apple": 95}},
		Lunch:     catalog.FoodCatalog{},
		Dinner:    catalog.FoodCatalog{},
	}
	second := catalog.Set{
		Breakfast: catalog.FoodCatalog{"grain": {"toast": 75}},
		Lunch:     catalog.FoodCatalog{},
		Dinner:    catalog.FoodCatalog{},
	}

	wrote, err := s.Seed(first, false)
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = s.Seed(second, false)
	require.NoError(t, err)
	assert.False(t, wrote)

	c, err := s.LoadCatalog(models.Breakfast)
	require.NoError(t, err)
	assert.Equal(t, first.Breakfast, c)

	wrote, err = s.Seed(second, true)
	require.NoError(t, err)
	assert.True(t, wrote)

	c, err = s.LoadCatalog(models.Breakfast)
	require.NoError(t, err)
	assert.Equal(t, second.Breakfast, c)
}
