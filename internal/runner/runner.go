// Package runner drives complete episodes against one game engine: it routes
// each observation to the owning seat's policy, submits the chosen action,
// pairs the protocol's delayed rewards back up with the actions that earned
// them, and hands finished transitions to the experience collector.
package runner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/marlbench/norepeat-rps/internal/experience"
	"github.com/marlbench/norepeat-rps/internal/game"
	"github.com/marlbench/norepeat-rps/internal/game/events"
	"github.com/marlbench/norepeat-rps/internal/policy"
)

// Config wires a runner together. Env and a policy per player are required;
// Collector and Bus are optional.
type Config struct {
	Env       *game.Engine
	Policies  map[string]policy.Policy
	Collector *experience.Collector
	Bus       events.Publisher
	Logger    *zerolog.Logger
	// OnEpisode, when set, is invoked after every finished episode.
	OnEpisode func(EpisodeResult)
}

// Runner executes self-play episodes sequentially against a single engine
// instance. Concurrent runs need their own engines and runners.
type Runner struct {
	env       *game.Engine
	policies  map[string]policy.Policy
	collector *experience.Collector
	bus       events.Publisher
	logger    zerolog.Logger
	onEpisode func(EpisodeResult)
}

// EpisodeResult summarizes one finished episode.
type EpisodeResult struct {
	Episode int
	Steps   int
	Returns map[string]float64
	Rounds  game.RoundGrid
}

// Summary aggregates returns across a run.
type Summary struct {
	Episodes     int
	MeanReturn   map[string]float64
	StdDevReturn map[string]float64
}

// New validates the wiring and creates a runner.
func New(cfg Config) (*Runner, error) {
	if cfg.Env == nil {
		return nil, fmt.Errorf("runner: no engine configured")
	}
	for _, p := range cfg.Env.Players() {
		if _, ok := cfg.Policies[p]; !ok {
			return nil, fmt.Errorf("runner: no policy configured for %q", p)
		}
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "runner").Logger()
	}

	return &Runner{
		env:       cfg.Env,
		policies:  cfg.Policies,
		collector: cfg.Collector,
		bus:       cfg.Bus,
		logger:    logger,
		onEpisode: cfg.OnEpisode,
	}, nil
}

// pendingTransition holds a player's last observation/action pair until the
// protocol delivers the matching reward one turn later.
type pendingTransition struct {
	state  game.Observation
	action game.Action
}

// RunEpisode plays one episode to termination.
func (r *Runner) RunEpisode(ctx context.Context, episode int) (EpisodeResult, error) {
	result := EpisodeResult{
		Episode: episode,
		Returns: make(map[string]float64, game.NumSeats),
	}

	episodeID := uuid.New().String()
	obs := r.env.Reset()
	open := make(map[string]pendingTransition, game.NumSeats)

	if r.bus != nil {
		players := r.env.Players()
		r.bus.Publish(events.NewEpisodeStartedEvent(episodeID, players[:], r.env.ActivePlayer()))
	}

	for !r.env.Done() {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("episode %d abandoned: %w", episode, err)
		}

		actor, ob, err := soleEntry(obs)
		if err != nil {
			return result, fmt.Errorf("episode %d: %w", episode, err)
		}

		action, err := r.policies[actor].SelectAction(ob)
		if err != nil {
			return result, fmt.Errorf("episode %d: policy %q: %w", episode, r.policies[actor].Name(), err)
		}
		open[actor] = pendingTransition{state: ob, action: action}

		roundBefore := r.env.State().RoundIndex
		res, err := r.env.Step(actor, action)
		if err != nil {
			return result, fmt.Errorf("episode %d: %w", episode, err)
		}

		if r.bus != nil {
			r.bus.Publish(events.NewActionAppliedEvent(episodeID, actor, action, result.Steps, roundBefore))
			if after := r.env.State(); after.RoundIndex > roundBefore {
				r.bus.Publish(events.NewRoundResolvedEvent(episodeID, roundBefore, after.Rounds[roundBefore]))
			}
		}

		for p, next := range res.Observations {
			reward := res.Rewards[p]
			result.Returns[p] += reward

			if tr, ok := open[p]; ok {
				r.policies[p].Update(tr.action, reward)
				if r.collector != nil {
					r.collector.Record(p, episode, result.Steps, tr.state, next, tr.action, reward, res.Done)
				}
				delete(open, p)
			}
		}

		result.Steps++
		obs = res.Observations
	}

	st := r.env.State()
	result.Rounds = st.Rounds
	r.replayRounds(st.Rounds)

	if r.bus != nil {
		r.bus.Publish(events.NewEpisodeFinishedEvent(episodeID, result.Steps, result.Returns))
	}

	r.logger.Debug().
		Int("episode", episode).
		Int("steps", result.Steps).
		Interface("returns", result.Returns).
		Msg("Episode complete")

	return result, nil
}

// Run executes the requested number of episodes and aggregates the returns.
func (r *Runner) Run(ctx context.Context, episodes int) (Summary, error) {
	if episodes <= 0 {
		return Summary{}, fmt.Errorf("runner: episodes must be positive, got %d", episodes)
	}

	returns := make(map[string][]float64, game.NumSeats)
	for _, p := range r.env.Players() {
		returns[p] = make([]float64, 0, episodes)
	}

	for episode := 0; episode < episodes; episode++ {
		res, err := r.RunEpisode(ctx, episode)
		if err != nil {
			return Summary{}, err
		}
		for p, ret := range res.Returns {
			returns[p] = append(returns[p], ret)
		}
		if r.onEpisode != nil {
			r.onEpisode(res)
		}
	}

	summary := Summary{
		Episodes:     episodes,
		MeanReturn:   make(map[string]float64, game.NumSeats),
		StdDevReturn: make(map[string]float64, game.NumSeats),
	}
	for p, rs := range returns {
		summary.MeanReturn[p] = stat.Mean(rs, nil)
		// The sample standard deviation is undefined for one episode.
		if len(rs) < 2 {
			summary.StdDevReturn[p] = 0
		} else {
			summary.StdDevReturn[p] = stat.StdDev(rs, nil)
		}
	}

	r.logger.Info().
		Int("episodes", episodes).
		Interface("mean_return", summary.MeanReturn).
		Msg("Run complete")

	return summary, nil
}

// replayRounds feeds resolved rounds to policies that learn from them.
func (r *Runner) replayRounds(rounds game.RoundGrid) {
	players := r.env.Players()
	for seat, p := range players {
		observer, ok := r.policies[p].(policy.RoundObserver)
		if !ok {
			continue
		}
		opp := game.Seat(seat).Other()
		for round := 0; round < game.NumRounds; round++ {
			own, theirs := rounds[round][seat], rounds[round][opp]
			if own == game.Unplayed || theirs == game.Unplayed {
				continue
			}
			observer.ObserveRound(own, theirs)
		}
	}
}

func soleEntry(obs map[string]game.Observation) (string, game.Observation, error) {
	if len(obs) != 1 {
		return "", game.Observation{}, fmt.Errorf("expected exactly one pending observation, got %d", len(obs))
	}
	for p, ob := range obs {
		return p, ob, nil
	}
	return "", game.Observation{}, fmt.Errorf("unreachable")
}
