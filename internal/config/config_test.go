package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlbench/norepeat-rps/internal/game"
)

func TestInit(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	configContent := `
env:
  seed: 1234
selfplay:
  episodes: 500
  policies:
    player_1: softmax
    player_2: regret
  temperature: 0.5
log:
  level: debug
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	require.NoError(t, err)

	// Reset global state
	cfg = nil
	v = nil

	// Initialize config
	err = Init(configFile)
	require.NoError(t, err)

	// Test loaded values
	c := Get()
	assert.Equal(t, int64(1234), c.Env.Seed)
	assert.Equal(t, 500, c.SelfPlay.Episodes)
	assert.Equal(t, "softmax", c.SelfPlay.Policies["player_1"])
	assert.Equal(t, "regret", c.SelfPlay.Policies["player_2"])
	assert.Equal(t, 0.5, c.SelfPlay.Temperature)
	assert.Equal(t, "debug", c.Log.Level)
	// Untouched sections keep their defaults
	assert.Equal(t, game.EnvID, c.Env.ID)
	assert.Equal(t, 10000, c.Experience.Capacity)
}

func TestInitWithDefaults(t *testing.T) {
	// Reset global state
	cfg = nil
	v = nil

	// Initialize with non-existent config (should use defaults)
	err := Init("/non/existent/path/config.yaml")
	require.NoError(t, err)

	c := Get()
	require.NotNil(t, c)
	assert.Equal(t, game.EnvID, c.Env.ID)
	assert.Equal(t, []string{"player_1", "player_2"}, c.Env.Players)
	assert.Equal(t, 100, c.SelfPlay.Episodes)
	assert.Equal(t, "console", c.Log.Format)
}

func TestEnvironmentVariables(t *testing.T) {
	// Reset global state
	cfg = nil
	v = nil

	// Set environment variables
	os.Setenv("NRPS_SELFPLAY_EPISODES", "250")
	os.Setenv("NRPS_LOG_LEVEL", "warn")
	defer os.Unsetenv("NRPS_SELFPLAY_EPISODES")
	defer os.Unsetenv("NRPS_LOG_LEVEL")

	// Initialize config
	err := Init("")
	require.NoError(t, err)

	// Environment variables should override
	c := Get()
	assert.Equal(t, 250, c.SelfPlay.Episodes)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestSet(t *testing.T) {
	// Reset global state
	cfg = nil
	v = nil

	// Initialize config
	err := Init("")
	require.NoError(t, err)

	// Set values
	Set("selfplay.episodes", 42)
	Set("env.seed", 99)

	// Check updated values
	c := Get()
	assert.Equal(t, 42, c.SelfPlay.Episodes)
	assert.Equal(t, int64(99), c.Env.Seed)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env: EnvConfig{ID: game.EnvID, Players: []string{"player_1", "player_2"}},
			SelfPlay: SelfPlayConfig{
				Episodes:    10,
				Policies:    map[string]string{"player_1": "random"},
				Alpha:       0.1,
				Temperature: 1.0,
			},
			Experience: ExperienceConfig{Enabled: true, Capacity: 100},
			Log:        LogConfig{Level: "info", Format: "console"},
		}
	}

	require.NoError(t, Validate(base()))

	c := base()
	c.Env.Players = []string{"player_1"}
	assert.Error(t, Validate(c))

	c = base()
	c.Env.Players = []string{"dup", "dup"}
	assert.Error(t, Validate(c))

	c = base()
	c.SelfPlay.Episodes = 0
	assert.Error(t, Validate(c))

	c = base()
	c.SelfPlay.Policies = map[string]string{"stranger": "random"}
	assert.Error(t, Validate(c))

	c = base()
	c.SelfPlay.Policies = map[string]string{"player_1": "minimax"}
	assert.Error(t, Validate(c))

	c = base()
	c.SelfPlay.Temperature = 0
	assert.Error(t, Validate(c))

	c = base()
	c.Log.Level = "loud"
	assert.Error(t, Validate(c))

	c = base()
	c.Log.Format = "xml"
	assert.Error(t, Validate(c))
}
