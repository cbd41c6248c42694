// Package catalog holds the static per-meal food datasets: food group ->
// item -> calories. Catalogs are validated once when loaded and are never
// mutated afterwards.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"mcp-meal-planner/internal/models"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

// FoodCatalog maps a group name to its items and their calorie values.
// Item names are unique within a group but may repeat across groups.
type FoodCatalog map[string]map[string]int

// Item is one flattened catalog entry.
type Item struct {
	Group    string `json:"group"`
	Name     string `json:"name"`
	Calories int    `json:"calories"`
}

// Validate checks that every group and item is named and that no calorie
// value is negative.
func (c FoodCatalog) Validate() error {
	for group, items := range c {
		if group == "" {
			return fmt.Errorf("%w: empty group name", ErrInvalidCatalog)
		}
		for name, cals := range items {
			if name == "" {
				return fmt.Errorf("%w: empty item name in group %q", ErrInvalidCatalog, group)
			}
			if cals < 0 {
				return fmt.Errorf("%w: item %q in group %q has negative calories %d",
					ErrInvalidCatalog, name, group, cals)
			}
		}
	}
	return nil
}

// Groups returns the group names in sorted order.
func (c FoodCatalog) Groups() []string {
	groups := make([]string, 0, len(c))
	for g := range c {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// Flatten discards the group structure and returns every entry, ordered by
// group then item name so repeated runs see the same sequence.
func (c FoodCatalog) Flatten() []Item {
	var items []Item
	for _, group := range c.Groups() {
		names := make([]string, 0, len(c[group]))
		for name := range c[group] {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			items = append(items, Item{Group: group, Name: name, Calories: c[group][name]})
		}
	}
	return items
}

// Len counts entries across all groups, duplicates included.
func (c FoodCatalog) Len() int {
	n := 0
	for _, items := range c {
		n += len(items)
	}
	return n
}

// DistinctNames counts unique item names across all groups.
func (c FoodCatalog) DistinctNames() int {
	seen := make(map[string]struct{})
	for _, items := range c {
		for name := range items {
			seen[name] = struct{}{}
		}
	}
	return len(seen)
}

// Contains reports whether any group holds an item with the given name.
func (c FoodCatalog) Contains(name string) bool {
	for _, items := range c {
		if _, ok := items[name]; ok {
			return true
		}
	}
	return false
}

// Without returns a copy of the catalog minus the named groups. Unknown
// group names are ignored.
func (c FoodCatalog) Without(groups ...string) FoodCatalog {
	skip := make(map[string]bool, len(groups))
	for _, g := range groups {
		skip[g] = true
	}
	out := make(FoodCatalog, len(c))
	for group, items := range c {
		if skip[group] {
			continue
		}
		copied := make(map[string]int, len(items))
		for name, cals := range items {
			copied[name] = cals
		}
		out[group] = copied
	}
	return out
}

// Set bundles the three independent per-meal catalogs.
type Set struct {
	Breakfast FoodCatalog `json:"breakfast" yaml:"breakfast"`
	Lunch     FoodCatalog `json:"lunch" yaml:"lunch"`
	Dinner    FoodCatalog `json:"dinner" yaml:"dinner"`
}

func (s Set) For(meal models.MealType) FoodCatalog {
	switch meal {
	case models.Breakfast:
		return s.Breakfast
	case models.Lunch:
		return s.Lunch
	case models.Dinner:
		return s.Dinner
	}
	return nil
}

func (s Set) Validate() error {
	for _, meal := range models.MealTypes {
		if err := s.For(meal).Validate(); err != nil {
			return fmt.Errorf("%s catalog: %w", meal, err)
		}
	}
	return nil
}
