// Package budget turns biometrics into a daily calorie requirement and the
// per-meal targets fed to the selection engine.
package budget

import (
	"fmt"

	"mcp-meal-planner/internal/models"
	"mcp-meal-planner/internal/selection"
)

// Per-meal shares of the daily budget. These are policy constants, not
// derived values; they sum to 1.
const (
	BreakfastShare = 1.0 / 2
	LunchShare     = 1.0 / 3
	DinnerShare    = 1.0 / 6
)

const (
	LbToKg = 0.453592
	KgToLb = 2.20462
	InToCm = 2.54
	CmToIn = 0.393701
)

// ComputeBMR estimates basal metabolic rate with the Mifflin-St Jeor
// variant 9.99w + 6.25h - 4.92a, plus 5 for men and minus 161 otherwise.
func ComputeBMR(weightKg, heightCm float64, ageYears int, gender models.Gender) float64 {
	bmr := 9.99*weightKg + 6.25*heightCm - 4.92*float64(ageYears)
	if gender == models.Male {
		return bmr + 5
	}
	return bmr - 161
}

// ProfileBMR is ComputeBMR over a profile.
func ProfileBMR(p models.BiometricProfile) float64 {
	return ComputeBMR(p.WeightKg, p.HeightCm, p.Age, p.Gender)
}

// SplitTargets divides a daily budget into breakfast, lunch and dinner.
func SplitTargets(bmr float64) (models.MealTargets, error) {
	if err := selection.CheckTarget(bmr); err != nil {
		return models.MealTargets{}, fmt.Errorf("daily budget: %w", err)
	}
	return models.MealTargets{
		Breakfast: bmr * BreakfastShare,
		Lunch:     bmr * LunchShare,
		Dinner:    bmr * DinnerShare,
	}, nil
}

// FromImperial converts pounds and feet+inches to kilograms and centimetres.
func FromImperial(weightLb, heightFt, heightIn float64) (weightKg, heightCm float64) {
	return weightLb * LbToKg, (heightFt*12 + heightIn) * InToCm
}

// ToImperial converts kilograms and centimetres to pounds and inches.
func ToImperial(weightKg, heightCm float64) (weightLb, heightIn float64) {
	return weightKg * KgToLb, heightCm * CmToIn
}
