package policy

import (
	"time"

	erand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/marlbench/norepeat-rps/internal/game"
	"github.com/marlbench/norepeat-rps/internal/mask"
)

// SoftmaxPolicy keeps a per-action value estimate and samples from the
// softmax over mask-adjusted scores. It is the in-repo stand-in for an
// external score-producing policy wired through the masking adapter.
type SoftmaxPolicy struct {
	Q           [game.NumActions]float64
	Alpha       float64
	Temperature float64

	seed uint64
	rand erand.Source
}

var _ Policy = (*SoftmaxPolicy)(nil)

// NewSoftmax instantiates the SoftmaxPolicy. A zero seed falls back to a
// time-based one; a non-positive temperature defaults to 1.
func NewSoftmax(alpha, temperature float64, seed uint64) *SoftmaxPolicy {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	if temperature <= 0 {
		temperature = 1
	}
	return &SoftmaxPolicy{
		Alpha:       alpha,
		Temperature: temperature,
		seed:        seed,
		rand:        erand.NewSource(seed),
	}
}

func (p *SoftmaxPolicy) Name() string {
	return "softmax"
}

// SelectAction pushes the raw scores through the masking adapter, then samples
// the resulting softmax distribution.
func (p *SoftmaxPolicy) SelectAction(obs game.Observation) (game.Action, error) {
	raw := make([]float64, game.NumActions)
	for a := range p.Q {
		raw[a] = p.Q[a] / p.Temperature
	}

	adjusted, err := mask.AdjustScores(raw, obs.ActionMask[:])
	if err != nil {
		return game.Unplayed, err
	}

	weights := mask.Softmax(adjusted)
	i, ok := sampleuv.NewWeighted(weights, p.rand).Take()
	if !ok {
		return game.Unplayed, ErrNoLegalActions
	}
	return game.Action(i), nil
}

// Update nudges the chosen action's value estimate towards the delivered
// reward.
func (p *SoftmaxPolicy) Update(action game.Action, reward float64) {
	if !action.Valid() {
		return
	}
	p.Q[action] = (1-p.Alpha)*p.Q[action] + p.Alpha*reward
}

// Reset clears the value estimates and reseeds the sampler.
func (p *SoftmaxPolicy) Reset() {
	p.Q = [game.NumActions]float64{}
	p.rand = erand.NewSource(p.seed)
}
