package selection

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-meal-planner/internal/catalog"
)

func scenarioCatalog() catalog.FoodCatalog {
	return catalog.FoodCatalog{
		"fruit": {"apple": 95, "banana": 105},
		"grain": {"toast": 75},
	}
}

// randomCatalog builds a catalog of n items spread over a few groups.
func randomCatalog(r *rand.Rand, n int) catalog.FoodCatalog {
	c := catalog.FoodCatalog{}
	for i := 0; i < n; i++ {
		group := fmt.Sprintf("g%d", r.IntN(3))
		if c[group] == nil {
			c[group] = map[string]int{}
		}
		c[group][fmt.Sprintf("item%02d", i)] = r.IntN(400)
	}
	return c
}

// bruteForceBest enumerates every subset and returns the best total <= target.
func bruteForceBest(items []catalog.Item, target int) int {
	best := 0
	for mask := 0; mask < 1<<len(items); mask++ {
		total := 0
		for i, it := range items {
			if mask&(1<<i) != 0 {
				total += it.Calories
			}
		}
		if total <= target && total > best {
			best = total
		}
	}
	return best
}

func caloriesOf(t *testing.T, c catalog.FoodCatalog, names []string) int {
	t.Helper()
	values := map[string]int{}
	for _, it := range c.Flatten() {
		values[it.Name] = it.Calories
	}
	total := 0
	for _, name := range names {
		v, ok := values[name]
		require.True(t, ok, "selected item %q not in catalog", name)
		total += v
	}
	return total
}

func TestSelectExact_Scenario(t *testing.T) {
	sel, err := SelectExact(170, scenarioCatalog())

	require.NoError(t, err)
	assert.Equal(t, 170, sel.Calories)
	assert.ElementsMatch(t, []string{"apple", "toast"}, sel.Items)
}

func TestSelectExact_MatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for round := 0; round < 60; round++ {
		c := randomCatalog(r, 1+r.IntN(12))
		target := r.IntN(1200)

		sel, err := SelectExact(target, c)
		require.NoError(t, err)

		want := bruteForceBest(c.Flatten(), target)
		assert.Equal(t, want, sel.Calories, "round %d target %d", round, target)
		assert.Equal(t, sel.Calories, caloriesOf(t, c, sel.Items))
		assert.LessOrEqual(t, sel.Calories, target)

		seen := map[string]bool{}
		for _, name := range sel.Items {
			assert.False(t, seen[name], "duplicate %q", name)
			seen[name] = true
		}
	}
}

func TestSelectExact_Monotonic(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	c := randomCatalog(r, 10)

	prev := 0
	for target := 0; target <= 1500; target += 7 {
		sel, err := SelectExact(target, c)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, sel.Calories, prev, "target %d", target)
		prev = sel.Calories
	}
}

func TestSelectExact_ZeroTarget(t *testing.T) {
	sel, err := SelectExact(0, scenarioCatalog())

	require.NoError(t, err)
	assert.Empty(t, sel.Items)
	assert.Zero(t, sel.Calories)
}

func TestSelectExact_EmptyCatalog(t *testing.T) {
	for _, target := range []int{0, 1, 500, 3000} {
		sel, err := SelectExact(target, catalog.FoodCatalog{})
		require.NoError(t, err)
		assert.Empty(t, sel.Items)
		assert.Zero(t, sel.Calories)
	}
}

func TestSelectExact_NothingFits(t *testing.T) {
	sel, err := SelectExact(50, scenarioCatalog())

	require.NoError(t, err)
	assert.Empty(t, sel.Items)
	assert.Zero(t, sel.Calories)
}

func TestExact_NegativeTarget(t *testing.T) {
	_, err := Exact(-1, scenarioCatalog().Flatten(), 0)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestExact_CapacityExceeded(t *testing.T) {
	items := scenarioCatalog().Flatten()

	_, err := Exact(249, items, 1000)
	require.NoError(t, err, "4 rows x 250 columns fits exactly")

	_, err = Exact(250, items, 1000)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = Exact(math.MaxInt, items, 0)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestExact_RepeatedNamesAcrossGroups(t *testing.T) {
	c := catalog.FoodCatalog{
		"fruit":  {"apple": 95},
		"snacks": {"apple": 95},
	}
	sel, err := SelectExact(190, c)

	require.NoError(t, err)
	assert.Equal(t, 190, sel.Calories)
	assert.Equal(t, []string{"apple", "apple"}, sel.Items)
}

func TestParseStrategy(t *testing.T) {
	tests := map[string]Strategy{
		"":              StrategyExact,
		"exact":         StrategyExact,
		"Knapsack":      StrategyExact,
		"random_greedy": StrategyRandomGreedy,
		"greedy":        StrategyRandomGreedy,
	}
	for in, want := range tests {
		got, err := ParseStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseStrategy("simulated_annealing")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestTruncateTarget(t *testing.T) {
	got, err := TruncateTarget(825.9)
	require.NoError(t, err)
	assert.Equal(t, 825, got)

	got, err = TruncateTarget(0)
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	_, err = TruncateTarget(-0.5)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}
