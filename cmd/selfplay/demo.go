package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/marlbench/norepeat-rps/internal/config"
	"github.com/marlbench/norepeat-rps/internal/game"
	"github.com/marlbench/norepeat-rps/internal/runner"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Play one verbose episode and print every resolved round",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		runSeed := resolveSeed(cfg)
		fmt.Printf("Episode seed: %d\n", runSeed)

		env, err := buildEngine(cfg, runSeed)
		if err != nil {
			return err
		}
		policies, err := buildPolicies(cfg, runSeed)
		if err != nil {
			return err
		}

		r, err := runner.New(runner.Config{
			Env:      env,
			Policies: policies,
			Logger:   &log.Logger,
		})
		if err != nil {
			return err
		}

		res, err := r.RunEpisode(cmd.Context(), 0)
		if err != nil {
			return err
		}

		players := env.Players()
		for round := 0; round < game.NumRounds; round++ {
			a0, a1 := res.Rounds[round][0], res.Rounds[round][1]
			p0, _ := game.Payoff(a0, a1)
			outcome := "draw"
			switch {
			case p0 > 0:
				outcome = players[0] + " wins"
			case p0 < 0:
				outcome = players[1] + " wins"
			}
			fmt.Printf("Round %d: %s plays %s, %s plays %s -> %s\n",
				round+1, players[0], a0, players[1], a1, outcome)
		}

		fmt.Printf("\nFinal returns after %d steps:\n", res.Steps)
		for _, p := range players {
			fmt.Printf("  %s: %+.0f\n", p, res.Returns[p])
		}
		return nil
	},
}
