package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/marlbench/norepeat-rps/internal/config"
	"github.com/marlbench/norepeat-rps/internal/game"
	"github.com/marlbench/norepeat-rps/internal/policy"
)

var (
	cfgFile     string
	seed        int64
	episodes    int
	logLevel    string
	policyFlags map[string]string
)

var rootCmd = &cobra.Command{
	Use:   "selfplay",
	Short: "Self-play driver for the no-repeat rock-paper-scissors environment",
	Long: `selfplay runs episodes of three-round rock-paper-scissors where each
player may use each throw at most once, pairing configurable policies
against each other and optionally collecting experience for training.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(cfgFile); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		// Flags override config file values
		if cmd.Flags().Changed("seed") {
			config.Set("env.seed", seed)
		}
		if cmd.Flags().Changed("episodes") {
			config.Set("selfplay.episodes", episodes)
		}
		if cmd.Flags().Changed("log-level") {
			config.Set("log.level", logLevel)
		}
		if cmd.Flags().Changed("policy") {
			config.Set("selfplay.policies", policyFlags)
		}

		cfg := config.Get()
		setupLogging(cfg.Log.Level, cfg.Log.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "RNG seed (0 for time-based)")
	rootCmd.PersistentFlags().IntVar(&episodes, "episodes", 0, "Number of episodes to play")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringToStringVar(&policyFlags, "policy", nil, "Policy per player, e.g. --policy player_1=softmax,player_2=regret")

	rootCmd.AddCommand(runCmd, demoCmd)
}

func setupLogging(level, format string) {
	var logLevel zerolog.Level
	switch level {
	case "trace":
		logLevel = zerolog.TraceLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
}

// resolveSeed turns the configured seed into a concrete one, falling back to
// the clock so unseeded runs differ while staying reproducible from the log.
func resolveSeed(cfg *config.Config) int64 {
	if cfg.Env.Seed != 0 {
		return cfg.Env.Seed
	}
	return time.Now().UnixNano()
}

// buildEngine constructs the configured environment through the registry.
func buildEngine(cfg *config.Config, runSeed int64) (*game.Engine, error) {
	var players [game.NumSeats]string
	copy(players[:], cfg.Env.Players)

	return game.New(cfg.Env.ID, game.Config{
		Players: players,
		Rng:     rand.New(rand.NewSource(runSeed)),
		Logger:  &log.Logger,
	})
}

// buildPolicy maps a policy name from config to a concrete policy. Each
// player gets an offset seed so self-play opponents never mirror each other.
func buildPolicy(kind string, cfg *config.Config, runSeed int64, offset int64) (policy.Policy, error) {
	playerSeed := runSeed + offset
	switch kind {
	case "", "random":
		return policy.NewRandom(rand.New(rand.NewSource(playerSeed))), nil
	case "softmax":
		return policy.NewSoftmax(cfg.SelfPlay.Alpha, cfg.SelfPlay.Temperature, uint64(playerSeed)), nil
	case "regret":
		return policy.NewRegret(uint64(playerSeed)), nil
	default:
		return nil, fmt.Errorf("unknown policy %q", kind)
	}
}

func buildPolicies(cfg *config.Config, runSeed int64) (map[string]policy.Policy, error) {
	policies := make(map[string]policy.Policy, len(cfg.Env.Players))
	for i, player := range cfg.Env.Players {
		kind := cfg.SelfPlay.Policies[player]
		p, err := buildPolicy(kind, cfg, runSeed, int64(i+1))
		if err != nil {
			return nil, fmt.Errorf("player %q: %w", player, err)
		}
		policies[player] = p
	}
	return policies, nil
}
