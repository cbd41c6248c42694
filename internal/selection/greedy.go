package selection

import (
	"math"
	"math/rand/v2"
	"sort"

	"mcp-meal-planner/internal/catalog"
	"mcp-meal-planner/internal/models"
)

// DefaultTolerance is how close, in calories, Greedy must get to its target
// before it stops.
const DefaultTolerance = 10.0

// Source supplies uniform random integers in [0, n).
type Source interface {
	IntN(n int) int
}

// Greedy repeatedly picks a random group, then a random untried item within
// it, keeping the item when it still fits under the target. It is not
// optimal and not deterministic unless Rand is seeded.
type Greedy struct {
	Rand      Source
	Tolerance float64
}

// NewGreedy returns a Greedy backed by a PCG generator seeded with seed.
func NewGreedy(seed uint64) *Greedy {
	return &Greedy{
		Rand:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Tolerance: DefaultTolerance,
	}
}

// Select runs the heuristic. Every iteration consumes one distinct item name,
// so the loop ends after at most c.DistinctNames() iterations even when the
// tolerance is never reached. An item name selected once is never selected
// again, even if it appears in several groups.
func (g *Greedy) Select(target float64, c catalog.FoodCatalog) (models.Selection, error) {
	if err := CheckTarget(target); err != nil {
		return models.Selection{}, err
	}
	src := g.Rand
	if src == nil {
		src = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	tolerance := g.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	pending := newPendingGroups(c)
	sel := models.Selection{Items: []string{}}

	for math.Abs(float64(sel.Calories)-target) >= tolerance && pending.remaining() > 0 {
		group := pending.groups[src.IntN(len(pending.groups))]
		names := pending.items[group]
		name := names[src.IntN(len(names))]
		cals := c[group][name]
		pending.markTried(name)

		if float64(sel.Calories+cals) <= target {
			sel.Items = append(sel.Items, name)
			sel.Calories += cals
		}
	}
	return sel, nil
}

// pendingGroups tracks untried item names per group. Groups drop out once
// all their items have been tried.
type pendingGroups struct {
	groups []string
	items  map[string][]string
}

func newPendingGroups(c catalog.FoodCatalog) *pendingGroups {
	p := &pendingGroups{items: make(map[string][]string, len(c))}
	for _, group := range c.Groups() {
		if len(c[group]) == 0 {
			continue
		}
		names := make([]string, 0, len(c[group]))
		for name := range c[group] {
			names = append(names, name)
		}
		sort.Strings(names)
		p.groups = append(p.groups, group)
		p.items[group] = names
	}
	return p
}

func (p *pendingGroups) remaining() int {
	return len(p.groups)
}

func (p *pendingGroups) markTried(name string) {
	kept := p.groups[:0]
	for _, group := range p.groups {
		names := p.items[group]
		for i, n := range names {
			if n == name {
				names = append(names[:i], names[i+1:]...)
				break
			}
		}
		if len(names) == 0 {
			delete(p.items, group)
			continue
		}
		p.items[group] = names
		kept = append(kept, group)
	}
	p.groups = kept
}
