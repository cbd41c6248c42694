// Package planner runs the calorie calculator and the selection engine for
// each meal of the day. A Planner holds read-only catalogs and carries no
// per-user state between calls.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mcp-meal-planner/internal/budget"
	"mcp-meal-planner/internal/catalog"
	"mcp-meal-planner/internal/models"
	"mcp-meal-planner/internal/selection"
)

var ErrInvalidProfile = errors.New("invalid biometric profile")

// ObserveFunc is called after every per-meal selection.
type ObserveFunc func(meal models.MealType, strategy selection.Strategy, elapsed time.Duration, err error)

type Option func(*Planner)

// WithMaxCells sets the knapsack table ceiling used by the exact strategy.
func WithMaxCells(n int) Option {
	return func(p *Planner) { p.maxCells = n }
}

func WithTolerance(tol float64) Option {
	return func(p *Planner) { p.tolerance = tol }
}

// WithRandSource replaces the random source used by the greedy strategy.
func WithRandSource(src selection.Source) Option {
	return func(p *Planner) { p.rand = &lockedSource{src: src} }
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Planner) { p.logger = logger }
}

func WithObserver(fn ObserveFunc) Option {
	return func(p *Planner) { p.observe = fn }
}

type Planner struct {
	catalogs  catalog.Set
	maxCells  int
	tolerance float64
	rand      *lockedSource
	validate  *validator.Validate
	logger    *zap.Logger
	observe   ObserveFunc
	now       func() time.Time
}

func New(catalogs catalog.Set, opts ...Option) *Planner {
	p := &Planner{
		catalogs:  catalogs,
		maxCells:  selection.DefaultMaxCells,
		tolerance: selection.DefaultTolerance,
		validate:  validator.New(),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rand == nil {
		p.rand = &lockedSource{src: selection.NewGreedy(uint64(time.Now().UnixNano())).Rand}
	}
	return p
}

// Catalogs exposes the read-only catalog set.
func (p *Planner) Catalogs() catalog.Set {
	return p.catalogs
}

type PlanRequest struct {
	Profile       models.BiometricProfile
	Strategy      selection.Strategy
	ExcludeGroups []string
}

// ValidateProfile checks the ranges the input collector is expected to
// enforce: age 1-120, weight 1-300 kg, height 1-250 cm.
func (p *Planner) ValidateProfile(profile models.BiometricProfile) error {
	if err := p.validate.Struct(profile); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return nil
}

// Budget returns the BMR and the per-meal targets for a profile.
func (p *Planner) Budget(profile models.BiometricProfile) (float64, models.MealTargets, error) {
	if err := p.ValidateProfile(profile); err != nil {
		return 0, models.MealTargets{}, err
	}
	bmr := budget.ProfileBMR(profile)
	targets, err := budget.SplitTargets(bmr)
	if err != nil {
		return 0, models.MealTargets{}, err
	}
	return bmr, targets, nil
}

// Plan selects items for breakfast, lunch and dinner in that order.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*models.MealPlan, error) {
	strategy := req.Strategy
	if strategy == "" {
		strategy = selection.StrategyExact
	}

	bmr, targets, err := p.Budget(req.Profile)
	if err != nil {
		return nil, err
	}

	plan := &models.MealPlan{
		ID:        uuid.New().String(),
		Name:      req.Profile.Name,
		BMR:       bmr,
		Targets:   targets,
		Strategy:  string(strategy),
		Meals:     make(map[models.MealType]models.MealResult, len(models.MealTypes)),
		CreatedAt: p.now().UTC(),
	}

	for _, meal := range models.MealTypes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		target := targets.For(meal)
		sel, err := p.Select(meal, target, strategy, req.ExcludeGroups...)
		if err != nil {
			return nil, fmt.Errorf("failed to select %s: %w", meal, err)
		}
		plan.Meals[meal] = models.MealResult{Meal: meal, Target: target, Selection: sel}
	}

	p.logger.Info("meal plan created",
		zap.String("plan_id", plan.ID),
		zap.String("strategy", plan.Strategy),
		zap.Float64("bmr", bmr),
		zap.Int("total_calories", plan.TotalCalories()))

	return plan, nil
}

// Select runs one strategy against one meal's catalog, minus excluded groups.
// The exact strategy receives the target truncated to an integer.
func (p *Planner) Select(meal models.MealType, target float64, strategy selection.Strategy, exclude ...string) (models.Selection, error) {
	c := p.catalogs.For(meal)
	if c == nil {
		return models.Selection{}, fmt.Errorf("no catalog for meal %q", meal)
	}
	if len(exclude) > 0 {
		c = c.Without(exclude...)
	}

	start := time.Now()
	sel, err := p.run(c, target, strategy)
	elapsed := time.Since(start)
	if p.observe != nil {
		p.observe(meal, strategy, elapsed, err)
	}
	if err != nil {
		p.logger.Warn("selection failed",
			zap.String("meal", string(meal)),
			zap.String("strategy", string(strategy)),
			zap.Float64("target", target),
			zap.Error(err))
		return models.Selection{}, err
	}

	p.logger.Debug("selection complete",
		zap.String("meal", string(meal)),
		zap.String("strategy", string(strategy)),
		zap.Float64("target", target),
		zap.Int("calories", sel.Calories),
		zap.Int("items", len(sel.Items)),
		zap.Duration("elapsed", elapsed))
	return sel, nil
}

func (p *Planner) run(c catalog.FoodCatalog, target float64, strategy selection.Strategy) (models.Selection, error) {
	switch strategy {
	case selection.StrategyExact:
		capacity, err := selection.TruncateTarget(target)
		if err != nil {
			return models.Selection{}, err
		}
		return selection.Exact(capacity, c.Flatten(), p.maxCells)
	case selection.StrategyRandomGreedy:
		g := &selection.Greedy{Rand: p.rand, Tolerance: p.tolerance}
		return g.Select(target, c)
	}
	return models.Selection{}, fmt.Errorf("%w: %q", selection.ErrUnknownStrategy, strategy)
}

// lockedSource lets concurrent requests share one random generator.
type lockedSource struct {
	mu  sync.Mutex
	src selection.Source
}

func (l *lockedSource) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}
