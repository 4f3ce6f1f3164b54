package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/marlbench/norepeat-rps/internal/game"
)

// Config holds all configuration for the application
type Config struct {
	Env        EnvConfig        `mapstructure:"env"`
	SelfPlay   SelfPlayConfig   `mapstructure:"selfplay"`
	Experience ExperienceConfig `mapstructure:"experience"`
	Log        LogConfig        `mapstructure:"log"`
}

// EnvConfig holds environment construction settings
type EnvConfig struct {
	ID      string   `mapstructure:"id"`
	Players []string `mapstructure:"players"`
	Seed    int64    `mapstructure:"seed"`
}

// SelfPlayConfig holds self-play run settings
type SelfPlayConfig struct {
	Episodes    int               `mapstructure:"episodes"`
	Policies    map[string]string `mapstructure:"policies"`
	Alpha       float64           `mapstructure:"alpha"`
	Temperature float64           `mapstructure:"temperature"`
}

// ExperienceConfig holds experience collection settings
type ExperienceConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Capacity int  `mapstructure:"capacity"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Environment defaults
	v.SetDefault("env.id", game.EnvID)
	v.SetDefault("env.players", []string{"player_1", "player_2"})
	v.SetDefault("env.seed", 0)

	// Self-play defaults
	v.SetDefault("selfplay.episodes", 100)
	v.SetDefault("selfplay.policies", map[string]string{
		"player_1": "random",
		"player_2": "random",
	})
	v.SetDefault("selfplay.alpha", 0.1)
	v.SetDefault("selfplay.temperature", 1.0)

	// Experience defaults
	v.SetDefault("experience.enabled", true)
	v.SetDefault("experience.capacity", 10000)

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/norepeat-rps")
	}

	// Set environment variable prefix
	v.SetEnvPrefix("NRPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// If we have a specific config path and it doesn't exist, that's ok - use defaults
		if configPath != "" {
			// Specific file requested but not found - that's ok, use defaults
		} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// For default locations, only ignore ConfigFileNotFoundError
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults
	}

	// Unmarshal into config struct
	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// Validate configuration
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		// Initialize with defaults if not already initialized
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// Set allows runtime config updates
func Set(key string, value interface{}) {
	v.Set(key, value)
	// Re-unmarshal to update struct
	v.Unmarshal(cfg)
}

// GetString gets a string value from config
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return v.GetInt(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of config file
func WatchConfig(onChange func()) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		// Re-unmarshal on change
		v.Unmarshal(cfg)
		if onChange != nil {
			onChange()
		}
	})
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Env.ID == "" {
		return fmt.Errorf("env.id must not be empty")
	}
	if len(c.Env.Players) != game.NumSeats {
		return fmt.Errorf("env.players must list exactly %d players", game.NumSeats)
	}
	seen := make(map[string]bool, len(c.Env.Players))
	for _, p := range c.Env.Players {
		if p == "" {
			return fmt.Errorf("env.players must not contain empty ids")
		}
		if seen[p] {
			return fmt.Errorf("env.players contains duplicate id %q", p)
		}
		seen[p] = true
	}

	if c.SelfPlay.Episodes <= 0 {
		return fmt.Errorf("selfplay.episodes must be positive")
	}
	for player, kind := range c.SelfPlay.Policies {
		if !seen[player] {
			return fmt.Errorf("selfplay.policies names unknown player %q", player)
		}
		switch kind {
		case "random", "softmax", "regret":
		default:
			return fmt.Errorf("selfplay.policies[%s]: unknown policy %q", player, kind)
		}
	}
	if c.SelfPlay.Alpha <= 0 || c.SelfPlay.Alpha > 1 {
		return fmt.Errorf("selfplay.alpha must be in (0, 1]")
	}
	if c.SelfPlay.Temperature <= 0 {
		return fmt.Errorf("selfplay.temperature must be positive")
	}

	if c.Experience.Capacity <= 0 {
		return fmt.Errorf("experience.capacity must be positive")
	}

	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of trace, debug, info, warn, error")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json")
	}

	return nil
}
