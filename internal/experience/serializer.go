package experience

import (
	"github.com/marlbench/norepeat-rps/internal/game"
)

// TensorSize is the flattened observation length: the 3x2 round grid followed
// by the length-3 action mask.
const TensorSize = game.NumRounds*game.NumSeats + game.NumActions

// Serializer flattens observations into the tensors stored on experiences.
type Serializer struct{}

// NewSerializer creates a new observation serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// ObservationToTensor flattens an observation row-major: one value per round
// slot (Unplayed kept as its own sentinel value), then the mask as 0/1.
func (s *Serializer) ObservationToTensor(obs game.Observation) []float32 {
	tensor := make([]float32, 0, TensorSize)
	for r := 0; r < game.NumRounds; r++ {
		for seat := 0; seat < game.NumSeats; seat++ {
			tensor = append(tensor, float32(obs.RealObs[r][seat]))
		}
	}
	for _, ok := range obs.ActionMask {
		if ok {
			tensor = append(tensor, 1)
		} else {
			tensor = append(tensor, 0)
		}
	}
	return tensor
}
