// Package mask combines a policy's raw per-action scores with an action
// validity mask so that masked-out actions can never be sampled. The game
// engine rejects illegal steps on its own; this adapter is for the collaborator
// that turns policy scores into an action distribution.
package mask

import (
	"errors"
	"fmt"
	"math"
)

// ErrLengthMismatch is returned when the score and mask vectors disagree on
// the size of the action space.
var ErrLengthMismatch = errors.New("score and mask lengths differ")

// logZero stands in for log(0). The most negative finite float64 keeps the
// downstream softmax at exactly zero probability without ever emitting -Inf
// or NaN.
const logZero = -math.MaxFloat64

// AdjustScores returns adjusted[a] = raw[a] + log(mask[a]) for mask values in
// {0, 1}, with log(0) clamped to the most negative representable finite value.
func AdjustScores(raw []float64, m []bool) ([]float64, error) {
	if len(raw) != len(m) {
		return nil, fmt.Errorf("adjust scores: %d scores vs %d mask entries: %w", len(raw), len(m), ErrLengthMismatch)
	}

	adjusted := make([]float64, len(raw))
	for i, score := range raw {
		if m[i] {
			adjusted[i] = score
			continue
		}
		v := score + logZero
		if math.IsInf(v, -1) {
			v = logZero
		}
		adjusted[i] = v
	}
	return adjusted, nil
}

// Softmax converts adjusted scores into a probability distribution, shifting
// by the maximum for numeric stability. Entries clamped to logZero come out as
// exactly zero weight.
func Softmax(adjusted []float64) []float64 {
	weights := make([]float64, len(adjusted))
	if len(adjusted) == 0 {
		return weights
	}

	largest := adjusted[0]
	for _, v := range adjusted[1:] {
		if v > largest {
			largest = v
		}
	}
	// Every entry at the clamp means every action is masked; shifting by the
	// maximum would resurrect them as uniform weights.
	if largest <= logZero {
		return weights
	}

	sum := 0.0
	for i, v := range adjusted {
		weights[i] = math.Exp(v - largest)
		sum += weights[i]
	}
	if sum == 0 {
		return weights
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}
