package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:8012", cfg.Addr())
	assert.False(t, cfg.Narrative.Enabled)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.applyEnv(envMap(map[string]string{
		"MEAL_PLANNER_PORT":      "9000",
		"MEAL_PLANNER_DB_PATH":   "/tmp/x.db",
		"MEAL_PLANNER_STRATEGY":  "random_greedy",
		"MEAL_PLANNER_LOG_LEVEL": "DEBUG",
		"GROQ_API_KEY":           "secret",
	}))

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.DBPath)
	assert.Equal(t, "random_greedy", cfg.Selection.Strategy)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Narrative.Enabled)
	assert.Equal(t, "secret", cfg.Narrative.APIKey)
}

func TestApplyEnv_NarrativeExplicitlyDisabled(t *testing.T) {
	cfg := Default()
	cfg.applyEnv(envMap(map[string]string{
		"GROQ_API_KEY":           "secret",
		"MEAL_PLANNER_NARRATIVE": "false",
	}))

	assert.False(t, cfg.Narrative.Enabled)
}

func TestValidate_Rejects(t *testing.T) {
	tests := map[string]func(*Config){
		"bad port":                 func(c *Config) { c.Server.Port = 0 },
		"bad strategy":             func(c *Config) { c.Selection.Strategy = "annealing" },
		"tiny table ceiling":       func(c *Config) { c.Selection.MaxCells = 10 },
		"bad log level":            func(c *Config) { c.Logging.Level = "loud" },
		"narrative without apikey": func(c *Config) { c.Narrative.Enabled = true },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: 8100
selection:
  strategy: random_greedy
  seed: 42
narrative:
  timeout: 15s
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("MEAL_PLANNER_PORT", "")
	t.Setenv("GROQ_API_KEY", "")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 8100, cfg.Server.Port)
	assert.Equal(t, "random_greedy", cfg.Selection.Strategy)
	assert.Equal(t, uint64(42), cfg.Selection.Seed)
	assert.Equal(t, 15*time.Second, cfg.Narrative.Timeout)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
