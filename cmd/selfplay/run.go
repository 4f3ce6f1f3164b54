package main

import (
	"fmt"

	"github.com/gosuri/uilive"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/marlbench/norepeat-rps/internal/config"
	"github.com/marlbench/norepeat-rps/internal/experience"
	"github.com/marlbench/norepeat-rps/internal/game"
	"github.com/marlbench/norepeat-rps/internal/game/events"
	"github.com/marlbench/norepeat-rps/internal/game/events/subscribers"
	"github.com/marlbench/norepeat-rps/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play configured policies against each other for many episodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		runSeed := resolveSeed(cfg)

		log.Info().
			Str("env", cfg.Env.ID).
			Int64("seed", runSeed).
			Int("episodes", cfg.SelfPlay.Episodes).
			Interface("policies", cfg.SelfPlay.Policies).
			Msg("Starting self-play run")

		env, err := buildEngine(cfg, runSeed)
		if err != nil {
			return err
		}
		policies, err := buildPolicies(cfg, runSeed)
		if err != nil {
			return err
		}

		var collector *experience.Collector
		if cfg.Experience.Enabled {
			collector = experience.NewCollector(cfg.Experience.Capacity, cfg.Env.ID, log.Logger)
		}

		bus := events.NewEventBus()
		bus.Subscribe(subscribers.NewLoggerSubscriber("episode_logger", log.Logger, zerolog.DebugLevel))

		writer := uilive.New()
		writer.Start()
		defer writer.Stop()

		totals := make(map[string]float64, game.NumSeats)
		r, err := runner.New(runner.Config{
			Env:       env,
			Policies:  policies,
			Collector: collector,
			Bus:       bus,
			Logger:    &log.Logger,
			OnEpisode: func(res runner.EpisodeResult) {
				for p, ret := range res.Returns {
					totals[p] += ret
				}
				fmt.Fprintf(writer, "episode %d/%d  totals: %v\n",
					res.Episode+1, cfg.SelfPlay.Episodes, totals)
			},
		})
		if err != nil {
			return err
		}

		summary, err := r.Run(cmd.Context(), cfg.SelfPlay.Episodes)
		if err != nil {
			return err
		}

		for _, p := range env.Players() {
			log.Info().
				Str("player", p).
				Float64("mean_return", summary.MeanReturn[p]).
				Float64("stddev_return", summary.StdDevReturn[p]).
				Msg("Player summary")
		}

		if collector != nil {
			flushExperience(cfg, collector)
		}
		return nil
	},
}

// flushExperience moves collected transitions into the buffer a trainer
// would drain.
func flushExperience(cfg *config.Config, collector *experience.Collector) {
	manager := experience.NewBufferManager(cfg.Experience.Capacity, log.Logger)
	buffer := manager.GetOrCreateBuffer(cfg.Env.ID)

	if err := buffer.AddBatch(collector.Experiences()); err != nil {
		log.Error().Err(err).Msg("Failed to buffer experiences")
		return
	}

	stats := buffer.Stats()
	log.Info().
		Int("buffered", stats.CurrentSize).
		Int64("total_added", stats.TotalAdded).
		Int64("total_dropped", stats.TotalDropped).
		Msg("Experience flushed")

	if err := manager.CloseAll(); err != nil {
		log.Error().Err(err).Msg("Failed to close experience buffers")
	}
}
