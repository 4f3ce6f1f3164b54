// Package policy holds the action-selection strategies used to drive the game
// in self-play. Real training runs replace these with an external optimizer;
// the interface mirrors what that collaborator consumes: a per-turn
// observation in, one discrete action out, delivered rewards fed back.
package policy

import (
	"errors"

	"github.com/marlbench/norepeat-rps/internal/game"
)

// ErrNoLegalActions is returned when the observation's mask leaves nothing to
// play. Under correct driving this cannot happen before the episode ends.
var ErrNoLegalActions = errors.New("no legal actions available")

// Policy selects actions for a single seat. Implementations are not safe for
// concurrent use; give each concurrent episode its own instance.
type Policy interface {
	Name() string
	SelectAction(obs game.Observation) (game.Action, error)
	// Update feeds back the reward delivered for a previously selected
	// action. The turn-alternation protocol delays delivery by one turn,
	// so the driver pairs rewards with actions before calling this.
	Update(action game.Action, reward float64)
	// Reset clears learned state between runs.
	Reset()
}

// RoundObserver is implemented by policies that learn from fully resolved
// rounds rather than scalar rewards. Drivers replay the final round grid into
// it once an episode terminates.
type RoundObserver interface {
	ObserveRound(own, opponent game.Action)
}

// legalActions lists the throws the mask still allows.
func legalActions(m game.Mask) []game.Action {
	legal := make([]game.Action, 0, game.NumActions)
	for a := game.Rock; a < game.NumActions; a++ {
		if m[a] {
			legal = append(legal, a)
		}
	}
	return legal
}
