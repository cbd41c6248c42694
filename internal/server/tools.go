// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"go.uber.org/zap"

	"mcp-meal-planner/internal/budget"
	"mcp-meal-planner/internal/models"
	"mcp-meal-planner/internal/planner"
	"mcp-meal-planner/internal/selection"
)

var errInvalidParams = errors.New("invalid parameters")

type ProfileParams struct {
	Name     string  `json:"name" description:"Name used to personalise descriptions"`
	Age      int     `json:"age" description:"Age in years (1-120)"`
	Gender   string  `json:"gender" description:"Male or Female"`
	Units    string  `json:"units,omitempty" description:"metric (default) or imperial"`
	WeightKg float64 `json:"weight_kg,omitempty" description:"Weight in kilograms (metric)"`
	HeightCm float64 `json:"height_cm,omitempty" description:"Height in centimetres (metric)"`
	WeightLb float64 `json:"weight_lb,omitempty" description:"Weight in pounds (imperial)"`
	HeightFt float64 `json:"height_ft,omitempty" description:"Height, feet part (imperial)"`
	HeightIn float64 `json:"height_in,omitempty" description:"Height, inches part (imperial)"`
}

type PlanMealsParams struct {
	ProfileParams
	Strategy      string   `json:"strategy,omitempty" description:"exact (default) or random_greedy"`
	ExcludeGroups []string `json:"exclude_groups,omitempty" description:"Food groups to leave out, e.g. allergies"`
}

type ListCatalogParams struct {
	Meal string `json:"meal" description:"breakfast, lunch or dinner"`
}

type BudgetResponse struct {
	Name     string             `json:"name"`
	BMR      float64            `json:"bmr"`
	Targets  models.MealTargets `json:"targets"`
	WeightKg float64            `json:"weight_kg"`
	HeightCm float64            `json:"height_cm"`
	WeightLb float64            `json:"weight_lb"`
	HeightIn float64            `json:"height_in"`
}

type CatalogResponse struct {
	Meal   models.MealType           `json:"meal"`
	Groups map[string]map[string]int `json:"groups"`
	Items  int                       `json:"items"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal arguments: %v", errInvalidParams, err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}

	return nil
}

// toProfile converts imperial inputs to metric before building the profile.
func (p ProfileParams) toProfile() (models.BiometricProfile, error) {
	gender, err := models.ParseGender(p.Gender)
	if err != nil {
		return models.BiometricProfile{}, fmt.Errorf("%w: %v", errInvalidParams, err)
	}

	weight, height := p.WeightKg, p.HeightCm
	switch strings.ToLower(p.Units) {
	case "", "metric":
	case "imperial":
		weight, height = budget.FromImperial(p.WeightLb, p.HeightFt, p.HeightIn)
	default:
		return models.BiometricProfile{}, fmt.Errorf("%w: unknown units %q", errInvalidParams, p.Units)
	}

	return models.BiometricProfile{
		Name:     strings.TrimSpace(p.Name),
		Age:      p.Age,
		WeightKg: weight,
		HeightCm: height,
		Gender:   gender,
	}, nil
}

func (s *MealPlannerServer) handleComputeBudget(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ProfileParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := params.toProfile()
	if err != nil {
		return nil, err
	}

	bmr, targets, err := s.planner.Budget(profile)
	if err != nil {
		return nil, err
	}

	lb, in := budget.ToImperial(profile.WeightKg, profile.HeightCm)
	return s.createJSONResponse(BudgetResponse{
		Name:     profile.Name,
		BMR:      bmr,
		Targets:  targets,
		WeightKg: profile.WeightKg,
		HeightCm: profile.HeightCm,
		WeightLb: lb,
		HeightIn: in,
	})
}

func (s *MealPlannerServer) buildPlan(ctx context.Context, req *protocol.CallToolRequest) (*models.MealPlan, error) {
	var params PlanMealsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := params.toProfile()
	if err != nil {
		return nil, err
	}

	strategy := s.strategy
	if params.Strategy != "" {
		if strategy, err = selection.ParseStrategy(params.Strategy); err != nil {
			return nil, err
		}
	}

	return s.planner.Plan(ctx, planner.PlanRequest{
		Profile:       profile,
		Strategy:      strategy,
		ExcludeGroups: params.ExcludeGroups,
	})
}

func (s *MealPlannerServer) handlePlanMeals(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	plan, err := s.buildPlan(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(plan)
}

// handleDescribeMeals plans the day and asks the narrator for a description
// of each meal. Narrative failures leave that meal's description empty.
func (s *MealPlannerServer) handleDescribeMeals(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	plan, err := s.buildPlan(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.narrator == nil {
		s.logger.Info("narrative generation disabled", zap.String("plan_id", plan.ID))
		return s.createJSONResponse(plan)
	}

	for _, meal := range models.MealTypes {
		result := plan.Meals[meal]
		text, err := s.narrator.Describe(ctx, meal, plan.Name, result.Selection.Items)
		if err != nil {
			s.metrics.NarrativeRequests.WithLabelValues(string(meal), "error").Inc()
			s.logger.Warn("failed to describe meal",
				zap.String("plan_id", plan.ID),
				zap.String("meal", string(meal)),
				zap.Error(err))
			continue
		}
		s.metrics.NarrativeRequests.WithLabelValues(string(meal), "ok").Inc()
		result.Description = text
		plan.Meals[meal] = result
	}

	return s.createJSONResponse(plan)
}

func (s *MealPlannerServer) handleListCatalog(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ListCatalogParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	meal, err := models.ParseMealType(params.Meal)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidParams, err)
	}

	c := s.planner.Catalogs().For(meal)
	return s.createJSONResponse(CatalogResponse{
		Meal:   meal,
		Groups: c,
		Items:  c.Len(),
	})
}

func (s *MealPlannerServer) registerTools() {
	s.tools = map[string]toolHandler{
		"compute_budget": s.handleComputeBudget,
		"plan_meals":     s.handlePlanMeals,
		"describe_meals": s.handleDescribeMeals,
		"list_catalog":   s.handleListCatalog,
	}

	for _, name := range s.toolNames() {
		s.logger.Debug("registered tool", zap.String("tool", name))
	}
}

func (s *MealPlannerServer) toolNames() []string {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
