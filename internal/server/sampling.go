// internal/server/sampling.go - narrative meal descriptions via chat completions
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"mcp-meal-planner/internal/models"
)

var ErrNoCompletion = errors.New("completion response has no choices")

// Narrator turns a meal's selected items into a free-text description.
type Narrator interface {
	Describe(ctx context.Context, meal models.MealType, name string, items []string) (string, error)
}

type SamplingConfig struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type SamplingClient struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	url        string
	apiKey     string
	model      string
	logger     *zap.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewSamplingClient(cfg SamplingConfig, logger *zap.Logger) *SamplingClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "narrative",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &SamplingClient{
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		logger:     logger,
	}
}

func (s *SamplingClient) Describe(ctx context.Context, meal models.MealType, name string, items []string) (string, error) {
	prompt, err := BuildPrompt(meal, name, items)
	if err != nil {
		return "", err
	}

	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.complete(ctx, prompt)
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe %s: %w", meal, err)
	}
	return out.(string), nil
}

func (s *SamplingClient) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    s.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("request failed with status %d and couldn't read body: %v", resp.StatusCode, err)
		}
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("completion error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", ErrNoCompletion
	}

	return completion.Choices[0].Message.Content, nil
}
