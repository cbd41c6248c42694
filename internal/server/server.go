// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"mcp-meal-planner/internal/catalog"
	"mcp-meal-planner/internal/config"
	"mcp-meal-planner/internal/planner"
	"mcp-meal-planner/internal/selection"
	"mcp-meal-planner/internal/storage"
)

type toolHandler func(context.Context, *protocol.CallToolRequest) (*protocol.CallToolResult, error)

type MealPlannerServer struct {
	info       protocol.Implementation
	httpServer *http.Server
	storage    *storage.SQLiteStorage
	planner    *planner.Planner
	narrator   Narrator
	metrics    *Collector
	logger     *zap.Logger
	config     *config.Config
	strategy   selection.Strategy
	tools      map[string]toolHandler
}

func NewMealPlannerServer(cfg *config.Config, logger *zap.Logger) (*MealPlannerServer, error) {
	stor, err := storage.NewSQLiteStorage(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	catalogs, err := loadCatalogs(stor, cfg.Storage, logger)
	if err != nil {
		stor.Close()
		return nil, err
	}

	strategy, err := selection.ParseStrategy(cfg.Selection.Strategy)
	if err != nil {
		stor.Close()
		return nil, err
	}

	metrics := NewCollector("meal_planner")
	plannerOpts := []planner.Option{
		planner.WithLogger(logger.Named("planner")),
		planner.WithMaxCells(cfg.Selection.MaxCells),
		planner.WithTolerance(cfg.Selection.Tolerance),
		planner.WithObserver(metrics.ObserveSelection),
	}
	if cfg.Selection.Seed != 0 {
		plannerOpts = append(plannerOpts, planner.WithRandSource(selection.NewGreedy(cfg.Selection.Seed).Rand))
	}

	s := &MealPlannerServer{
		storage:  stor,
		planner:  planner.New(catalogs, plannerOpts...),
		metrics:  metrics,
		logger:   logger,
		config:   cfg,
		strategy: strategy,
		info: protocol.Implementation{
			Name:    "meal-planner",
			Version: "1.0.0",
		},
	}
	if cfg.Narrative.Enabled {
		s.narrator = NewSamplingClient(SamplingConfig{
			URL:     cfg.Narrative.URL,
			APIKey:  cfg.Narrative.APIKey,
			Model:   cfg.Narrative.Model,
			Timeout: cfg.Narrative.Timeout,
		}, logger.Named("narrative"))
	}

	s.registerTools()

	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// loadCatalogs seeds an empty store from the catalog directory (or the
// embedded defaults) and then reads the catalogs back once.
func loadCatalogs(stor *storage.SQLiteStorage, cfg config.StorageConfig, logger *zap.Logger) (catalog.Set, error) {
	source := catalog.Default()
	if cfg.CatalogDir != "" {
		set, err := catalog.LoadDir(cfg.CatalogDir)
		if err != nil {
			return catalog.Set{}, fmt.Errorf("failed to load catalog files: %w", err)
		}
		source = set
	}

	seeded, err := stor.Seed(source, cfg.Reseed)
	if err != nil {
		return catalog.Set{}, fmt.Errorf("failed to seed catalogs: %w", err)
	}
	if seeded {
		logger.Info("catalogs seeded", zap.String("catalog_dir", cfg.CatalogDir))
	}

	set, err := stor.LoadSet()
	if err != nil {
		return catalog.Set{}, err
	}
	logger.Info("catalogs loaded",
		zap.Int("breakfast_items", set.Breakfast.Len()),
		zap.Int("lunch_items", set.Lunch.Len()),
		zap.Int("dinner_items", set.Dinner.Len()))
	return set, nil
}

func (s *MealPlannerServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsHeaders)

	r.Post("/", s.handleHTTP)
	r.Options("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "ok",
			"server":    s.info,
			"tools":     s.toolNames(),
			"narrative": s.narrator != nil,
		})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	return r
}

func corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		next.ServeHTTP(w, r)
	})
}

func (s *MealPlannerServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		s.metrics.ObserveTool(request.Name, "unknown", 0)
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	start := time.Now()
	result, err := handler(r.Context(), &request)
	if err != nil {
		status := statusFor(err)
		s.metrics.ObserveTool(request.Name, "error", time.Since(start))
		s.logger.Warn("tool call failed",
			zap.String("tool", request.Name),
			zap.Int("status", status),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		http.Error(w, err.Error(), status)
		return
	}
	s.metrics.ObserveTool(request.Name, "ok", time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// statusFor maps tool errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidParams),
		errors.Is(err, planner.ErrInvalidProfile),
		errors.Is(err, selection.ErrInvalidTarget),
		errors.Is(err, selection.ErrCapacityExceeded),
		errors.Is(err, selection.ErrUnknownStrategy):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Handler exposes the router, mainly for tests.
func (s *MealPlannerServer) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *MealPlannerServer) Start(ctx context.Context) error {
	s.logger.Info("starting meal planner server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *MealPlannerServer) Stop() error {
	var err error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = s.httpServer.Shutdown(ctx)
	}
	if s.storage != nil {
		if cerr := s.storage.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (s *MealPlannerServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
