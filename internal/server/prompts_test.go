package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-meal-planner/internal/models"
)

func TestFormatItems(t *testing.T) {
	assert.Equal(t, "[]", FormatItems(nil))
	assert.Equal(t, "['apple', 'toast']", FormatItems([]string{"apple", "toast"}))
	assert.Equal(t, `['chef\'s salad']`, FormatItems([]string{"chef's salad"}))
}

func TestBuildPrompt(t *testing.T) {
	for _, meal := range models.MealTypes {
		prompt, err := BuildPrompt(meal, "Ada", []string{"apple"})
		require.NoError(t, err)
		assert.Contains(t, prompt, string(meal))
		assert.Contains(t, prompt, "['apple']")
		assert.Contains(t, prompt, "Hello Ada!")
		assert.Contains(t, prompt, "Do not add ingredients")
	}
}

func TestBuildPrompt_AnonymousUser(t *testing.T) {
	prompt, err := BuildPrompt(models.Lunch, "", nil)

	require.NoError(t, err)
	assert.Contains(t, prompt, "Hello there!")
}
