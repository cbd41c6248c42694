// internal/models/meal.go
package models

import (
	"fmt"
	"strings"
	"time"
)

type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
)

// ParseGender accepts the canonical names case-insensitively.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	}
	return "", fmt.Errorf("unknown gender %q", s)
}

type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

// MealTypes lists the meals of a day in serving order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner}

func ParseMealType(s string) (MealType, error) {
	m := MealType(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case Breakfast, Lunch, Dinner:
		return m, nil
	}
	return "", fmt.Errorf("unknown meal type %q", s)
}

type BiometricProfile struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Age      int     `json:"age" validate:"gte=1,lte=120"`
	WeightKg float64 `json:"weight_kg" validate:"gte=1,lte=300"`
	HeightCm float64 `json:"height_cm" validate:"gte=1,lte=250"`
	Gender   Gender  `json:"gender" validate:"oneof=Male Female"`
}

type MealTargets struct {
	Breakfast float64 `json:"breakfast"`
	Lunch     float64 `json:"lunch"`
	Dinner    float64 `json:"dinner"`
}

// For returns the target of a single meal.
func (t MealTargets) For(meal MealType) float64 {
	switch meal {
	case Breakfast:
		return t.Breakfast
	case Lunch:
		return t.Lunch
	case Dinner:
		return t.Dinner
	}
	return 0
}

func (t MealTargets) Total() float64 {
	return t.Breakfast + t.Lunch + t.Dinner
}

// Selection is the output of one selection engine run. Items are in
// selection order; Calories is their combined total.
type Selection struct {
	Items    []string `json:"items"`
	Calories int      `json:"calories"`
}

type MealResult struct {
	Meal        MealType  `json:"meal"`
	Target      float64   `json:"target"`
	Selection   Selection `json:"selection"`
	Description string    `json:"description,omitempty"`
}

type MealPlan struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	BMR       float64                 `json:"bmr"`
	Targets   MealTargets             `json:"targets"`
	Strategy  string                  `json:"strategy"`
	Meals     map[MealType]MealResult `json:"meals"`
	CreatedAt time.Time               `json:"created_at"`
}

// TotalCalories sums the achieved calories across all meals.
func (p *MealPlan) TotalCalories() int {
	total := 0
	for _, m := range p.Meals {
		total += m.Selection.Calories
	}
	return total
}
