package server

import (
	"fmt"
	"strings"

	"mcp-meal-planner/internal/models"
)

const (
	breakfastIntro = "You are a friendly meal planner. Create a breakfast plan using only the following items, " +
		"grouping them into one or two dishes and giving each a short, appetising name. Items: "
	lunchIntro = "You are a friendly meal planner. Create a lunch plan using only the following items, " +
		"combining them into a balanced plate and naming the dish. Items: "
	dinnerIntro = "You are a friendly meal planner. Create a light dinner plan using only the following items, " +
		"with simple preparation steps. Items: "

	breakfastSuffix = " Describe the breakfast in a warm tone, mention how the items work together, and keep it under 150 words."
	lunchSuffix     = " Describe the lunch in a warm tone, suggest a simple way to assemble it, and keep it under 150 words."
	dinnerSuffix    = " Describe the dinner in a warm tone, suggest a cooking method, and keep it under 150 words."

	negativePrompt = " Do not add ingredients that are not in the list, do not give medical advice, and do not mention calorie counts."
)

var mealPrompts = map[models.MealType]struct{ intro, suffix string }{
	models.Breakfast: {breakfastIntro, breakfastSuffix},
	models.Lunch:     {lunchIntro, lunchSuffix},
	models.Dinner:    {dinnerIntro, dinnerSuffix},
}

func exampleResponse(name string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(" Start your answer in this style: \"Hello %s! I've put together a flavourful plan just for you, "+
		"built around the calories you can take in today. Let's get cooking!\"", name)
}

// FormatItems renders a selection as a bracketed, quoted list.
func FormatItems(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = "'" + strings.ReplaceAll(it, "'", "\\'") + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// BuildPrompt assembles the user prompt for one meal.
func BuildPrompt(meal models.MealType, name string, items []string) (string, error) {
	p, ok := mealPrompts[meal]
	if !ok {
		return "", fmt.Errorf("no prompt for meal %q", meal)
	}
	var b strings.Builder
	b.WriteString(p.intro)
	b.WriteString(FormatItems(items))
	b.WriteString(".")
	b.WriteString(exampleResponse(name))
	b.WriteString(p.suffix)
	b.WriteString(negativePrompt)
	return b.String(), nil
}
