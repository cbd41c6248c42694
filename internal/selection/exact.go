package selection

import (
	"fmt"

	"mcp-meal-planner/internal/catalog"
	"mcp-meal-planner/internal/models"
)

// DefaultMaxCells caps the knapsack table at (items+1)*(target+1) cells.
const DefaultMaxCells = 8_000_000

// SelectExact runs Exact over a catalog with the default table ceiling.
func SelectExact(target int, c catalog.FoodCatalog) (models.Selection, error) {
	return Exact(target, c.Flatten(), DefaultMaxCells)
}

// Exact solves the 0-1 knapsack where each item's value equals its weight
// (its calories): the returned selection has the largest total that does
// not exceed target, each item used at most once. maxCells <= 0 means
// DefaultMaxCells.
func Exact(target int, items []catalog.Item, maxCells int) (models.Selection, error) {
	if target < 0 {
		return models.Selection{}, fmt.Errorf("%w: %d", ErrInvalidTarget, target)
	}
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}

	n := len(items)
	if target >= maxCells || target+1 > maxCells/(n+1) {
		return models.Selection{}, fmt.Errorf("%w: %d items x %d calories > %d cells",
			ErrCapacityExceeded, n, target, maxCells)
	}

	width := target + 1
	// dp[i*width+c] is the best total using the first i items within capacity c.
	dp := make([]int, (n+1)*width)
	for i := 1; i <= n; i++ {
		value := items[i-1].Calories
		prev := dp[(i-1)*width : i*width]
		row := dp[i*width : (i+1)*width]
		for c := 0; c < width; c++ {
			if value > c {
				row[c] = prev[c]
				continue
			}
			row[c] = max(prev[c], prev[c-value]+value)
		}
	}

	sel := models.Selection{Items: []string{}, Calories: dp[n*width+target]}
	c := target
	for i := n; i > 0; i-- {
		if dp[i*width+c] != dp[(i-1)*width+c] {
			sel.Items = append(sel.Items, items[i-1].Name)
			c -= items[i-1].Calories
		}
	}
	return sel, nil
}
