package policy

import (
	"math/rand"
	"time"

	"github.com/marlbench/norepeat-rps/internal/game"
)

// RandomPolicy selects uniformly among mask-legal actions.
type RandomPolicy struct {
	rng *rand.Rand
}

var _ Policy = (*RandomPolicy)(nil)

// NewRandom creates a random policy. A nil rng falls back to a time-seeded
// source.
func NewRandom(rng *rand.Rand) *RandomPolicy {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomPolicy{rng: rng}
}

func (p *RandomPolicy) Name() string {
	return "random"
}

// SelectAction picks a uniformly random legal throw.
func (p *RandomPolicy) SelectAction(obs game.Observation) (game.Action, error) {
	legal := legalActions(obs.ActionMask)
	if len(legal) == 0 {
		return game.Unplayed, ErrNoLegalActions
	}
	return legal[p.rng.Intn(len(legal))], nil
}

func (p *RandomPolicy) Update(game.Action, float64) {}

func (p *RandomPolicy) Reset() {}
