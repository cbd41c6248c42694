// Package config loads server configuration from, in increasing priority,
// built-in defaults, an optional YAML file, a .env file and environment
// variables. Command-line flags are applied on top by cmd/meal-planner.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Selection SelectionConfig `yaml:"selection"`
	Narrative NarrativeConfig `yaml:"narrative"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Transport string `yaml:"transport" validate:"oneof=http"`
	Host      string `yaml:"host" validate:"required"`
	Port      int    `yaml:"port" validate:"gte=1,lte=65535"`
}

type StorageConfig struct {
	DBPath     string `yaml:"db_path" validate:"required"`
	CatalogDir string `yaml:"catalog_dir"`
	// Reseed replaces stored catalogs with the catalog files on every start.
	Reseed bool `yaml:"reseed"`
}

type SelectionConfig struct {
	Strategy  string  `yaml:"strategy" validate:"oneof=exact random_greedy"`
	MaxCells  int     `yaml:"max_cells" validate:"gte=1000"`
	Tolerance float64 `yaml:"tolerance" validate:"gt=0"`
	Seed      uint64  `yaml:"seed"`
}

type NarrativeConfig struct {
	Enabled bool          `yaml:"enabled"`
	URL     string        `yaml:"url" validate:"omitempty,url"`
	APIKey  string        `yaml:"api_key" validate:"required_if=Enabled true"`
	Model   string        `yaml:"model" validate:"required_if=Enabled true"`
	Timeout time.Duration `yaml:"timeout"`
}

type LoggingConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Transport: "http",
			Host:      "0.0.0.0",
			Port:      8012,
		},
		Storage: StorageConfig{
			DBPath: "/data/meal-planner.db",
		},
		Selection: SelectionConfig{
			Strategy:  "exact",
			MaxCells:  8_000_000,
			Tolerance: 10,
		},
		Narrative: NarrativeConfig{
			URL:     "https://api.groq.com/openai/v1/chat/completions",
			Model:   "llama-3.3-70b-versatile",
			Timeout: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds a Config. path may be empty; a missing .env file is ignored.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("MEAL_PLANNER_HOST", &c.Server.Host)
	if v, ok := lookup("MEAL_PLANNER_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	str("MEAL_PLANNER_DB_PATH", &c.Storage.DBPath)
	str("MEAL_PLANNER_CATALOG_DIR", &c.Storage.CatalogDir)
	str("MEAL_PLANNER_STRATEGY", &c.Selection.Strategy)
	if v, ok := lookup("MEAL_PLANNER_MAX_CELLS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Selection.MaxCells = n
		}
	}
	str("MEAL_PLANNER_LOG_LEVEL", &c.Logging.Level)
	c.Logging.Level = strings.ToLower(c.Logging.Level)

	str("GROQ_API_URL", &c.Narrative.URL)
	str("GROQ_MODEL", &c.Narrative.Model)
	str("GROQ_API_KEY", &c.Narrative.APIKey)
	if c.Narrative.APIKey != "" {
		if v, ok := lookup("MEAL_PLANNER_NARRATIVE"); !ok || v == "" {
			c.Narrative.Enabled = true
		}
	}
	if v, ok := lookup("MEAL_PLANNER_NARRATIVE"); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Narrative.Enabled = b
		}
	}
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
