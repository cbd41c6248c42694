package budget

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-meal-planner/internal/models"
	"mcp-meal-planner/internal/selection"
)

const tolerance = 1e-9

func TestComputeBMR(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		height float64
		age    int
		gender models.Gender
		want   float64
	}{
		{"male reference", 70, 175, 30, models.Male, 1650.45},
		{"female reference", 70, 175, 30, models.Female, 1484.45},
		{"female light", 50, 160, 25, models.Female, 1215.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBMR(tt.weight, tt.height, tt.age, tt.gender)
			assert.InDelta(t, tt.want, got, tolerance)
		})
	}
}

func TestSplitTargets_Reference(t *testing.T) {
	bmr := ComputeBMR(70, 175, 30, models.Male)

	targets, err := SplitTargets(bmr)

	require.NoError(t, err)
	assert.InDelta(t, 825.225, targets.Breakfast, tolerance)
	assert.InDelta(t, 550.15, targets.Lunch, tolerance)
	assert.InDelta(t, 275.075, targets.Dinner, tolerance)
	assert.InDelta(t, bmr, targets.Total(), tolerance)
}

func TestShares_SumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, BreakfastShare+LunchShare+DinnerShare, tolerance)
}

func TestSplitTargets_Rejects(t *testing.T) {
	for _, bmr := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := SplitTargets(bmr)
		assert.ErrorIs(t, err, selection.ErrInvalidTarget)
	}
}

func TestSplitTargets_NegativeFromExtremeProfile(t *testing.T) {
	bmr := ComputeBMR(1, 1, 120, models.Female)
	require.Less(t, bmr, 0.0)

	_, err := SplitTargets(bmr)
	assert.ErrorIs(t, err, selection.ErrInvalidTarget)
}

func TestFromImperial(t *testing.T) {
	kg, cm := FromImperial(154.324, 5, 9)

	assert.InDelta(t, 70.0, kg, 0.01)
	assert.InDelta(t, 175.26, cm, tolerance)
}

func TestToImperial(t *testing.T) {
	lb, in := ToImperial(70, 175.26)

	assert.InDelta(t, 154.32, lb, 0.01)
	assert.InDelta(t, 69.0, in, 0.01)
}

func TestProfileBMR(t *testing.T) {
	p := models.BiometricProfile{Name: "Ada", Age: 30, WeightKg: 70, HeightCm: 175, Gender: models.Male}
	assert.InDelta(t, 1650.45, ProfileBMR(p), tolerance)
}
