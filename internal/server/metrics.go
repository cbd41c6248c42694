package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mcp-meal-planner/internal/models"
	"mcp-meal-planner/internal/selection"
)

// Collector owns a private registry so several servers can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	ToolCalls         *prometheus.CounterVec
	ToolDuration      *prometheus.HistogramVec
	SelectionDuration *prometheus.HistogramVec
	SelectionErrors   *prometheus.CounterVec
	NarrativeRequests *prometheus.CounterVec
}

func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		ToolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total number of tool calls",
			},
			[]string{"tool", "status"},
		),
		ToolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_call_duration_seconds",
				Help:      "Tool call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		SelectionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "selection_duration_seconds",
				Help:      "Per-meal selection duration in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"meal", "strategy"},
		),
		SelectionErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selection_errors_total",
				Help:      "Total number of failed selections",
			},
			[]string{"meal", "strategy"},
		),
		NarrativeRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "narrative_requests_total",
				Help:      "Total number of narrative generation requests",
			},
			[]string{"meal", "status"},
		),
	}

	c.registry.MustRegister(
		c.ToolCalls,
		c.ToolDuration,
		c.SelectionDuration,
		c.SelectionErrors,
		c.NarrativeRequests,
		collectors.NewGoCollector(),
	)
	return c
}

// ObserveSelection matches planner.ObserveFunc.
func (c *Collector) ObserveSelection(meal models.MealType, strategy selection.Strategy, elapsed time.Duration, err error) {
	c.SelectionDuration.WithLabelValues(string(meal), string(strategy)).Observe(elapsed.Seconds())
	if err != nil {
		c.SelectionErrors.WithLabelValues(string(meal), string(strategy)).Inc()
	}
}

func (c *Collector) ObserveTool(tool, status string, elapsed time.Duration) {
	c.ToolCalls.WithLabelValues(tool, status).Inc()
	c.ToolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
