// Package selection picks catalog items whose combined calories approach a
// per-meal target. Two strategies exist: Exact, a 0-1 knapsack that
// maximises calories without exceeding the target, and Greedy, a randomised
// heuristic with a tolerance-based stopping rule. Callers choose explicitly.
package selection

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidTarget is returned for negative or non-finite calorie targets.
	ErrInvalidTarget = errors.New("invalid calorie target")
	// ErrCapacityExceeded is returned when the exact strategy's table would
	// exceed the configured cell ceiling.
	ErrCapacityExceeded = errors.New("calorie target exceeds selection capacity")
	ErrUnknownStrategy  = errors.New("unknown selection strategy")
)

type Strategy string

const (
	StrategyExact        Strategy = "exact"
	StrategyRandomGreedy Strategy = "random_greedy"
)

// ParseStrategy maps a user-supplied name to a Strategy. The empty string
// selects the exact strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact", "knapsack":
		return StrategyExact, nil
	case "random_greedy", "random-greedy", "greedy":
		return StrategyRandomGreedy, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// CheckTarget rejects negative, NaN and infinite targets.
func CheckTarget(target float64) error {
	if math.IsNaN(target) || math.IsInf(target, 0) || target < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, target)
	}
	return nil
}

// TruncateTarget converts a fractional target to the integer capacity used by
// the exact strategy. The fraction is dropped, not rounded: 825.9 becomes 825.
func TruncateTarget(target float64) (int, error) {
	if err := CheckTarget(target); err != nil {
		return 0, err
	}
	if target > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %v", ErrCapacityExceeded, target)
	}
	return int(target), nil
}
