package policy

import (
	"time"

	erand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/marlbench/norepeat-rps/internal/game"
)

// RegretPolicy plays the regret-matching strategy for rock-paper-scissors,
// learning from resolved rounds via ObserveRound.
type RegretPolicy struct {
	RegretSum [game.NumActions]float64

	strategySum [game.NumActions]float64
	seed        uint64
	rand        erand.Source
}

var (
	_ Policy        = (*RegretPolicy)(nil)
	_ RoundObserver = (*RegretPolicy)(nil)
)

// NewRegret instantiates the RegretPolicy. A zero seed falls back to a
// time-based one.
func NewRegret(seed uint64) *RegretPolicy {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RegretPolicy{
		seed: seed,
		rand: erand.NewSource(seed),
	}
}

func (p *RegretPolicy) Name() string {
	return "regret"
}

// SelectAction samples the regret-matched mixed strategy restricted to the
// mask-legal actions.
func (p *RegretPolicy) SelectAction(obs game.Observation) (game.Action, error) {
	strategy := p.strategy()

	sum := 0.0
	weights := make([]float64, game.NumActions)
	for a := game.Rock; a < game.NumActions; a++ {
		if obs.ActionMask[a] {
			weights[a] = strategy[a]
			sum += weights[a]
		}
	}
	if sum == 0 {
		// All remaining probability mass sits on masked throws; fall back
		// to uniform over whatever is still legal.
		legal := legalActions(obs.ActionMask)
		if len(legal) == 0 {
			return game.Unplayed, ErrNoLegalActions
		}
		for _, a := range legal {
			weights[a] = 1 / float64(len(legal))
		}
	}

	for a := range weights {
		p.strategySum[a] += weights[a]
	}

	i, ok := sampleuv.NewWeighted(weights, p.rand).Take()
	if !ok {
		return game.Unplayed, ErrNoLegalActions
	}
	return game.Action(i), nil
}

// Update is a no-op; the policy learns from ObserveRound instead.
func (p *RegretPolicy) Update(game.Action, float64) {}

// ObserveRound accumulates counterfactual regret for one resolved round.
func (p *RegretPolicy) ObserveRound(own, opponent game.Action) {
	if !own.Valid() || !opponent.Valid() {
		return
	}
	played, _ := game.Payoff(own, opponent)
	for a := game.Rock; a < game.NumActions; a++ {
		alt, _ := game.Payoff(a, opponent)
		p.RegretSum[a] += alt - played
	}
}

// AverageStrategy returns the time-averaged mixed strategy, which is what
// regret matching converges with.
func (p *RegretPolicy) AverageStrategy() [game.NumActions]float64 {
	var avg [game.NumActions]float64
	sum := 0.0
	for _, v := range p.strategySum {
		sum += v
	}
	for a := range avg {
		if sum > 0 {
			avg[a] = p.strategySum[a] / sum
		} else {
			avg[a] = 1.0 / game.NumActions
		}
	}
	return avg
}

// Reset clears accumulated regrets and reseeds the sampler.
func (p *RegretPolicy) Reset() {
	p.RegretSum = [game.NumActions]float64{}
	p.strategySum = [game.NumActions]float64{}
	p.rand = erand.NewSource(p.seed)
}

// strategy computes the current regret-matched distribution.
func (p *RegretPolicy) strategy() [game.NumActions]float64 {
	var strategy [game.NumActions]float64
	normalizing := 0.0
	for a, regret := range p.RegretSum {
		if regret > 0 {
			strategy[a] = regret
			normalizing += regret
		}
	}
	for a := range strategy {
		if normalizing > 0 {
			strategy[a] /= normalizing
		} else {
			strategy[a] = 1.0 / game.NumActions
		}
	}
	return strategy
}
