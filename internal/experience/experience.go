// Package experience records state transitions from self-play episodes in the
// shape a downstream optimizer consumes: state tensor, action, delayed reward,
// next state, done flag, and the action mask that was in force.
package experience

import (
	"time"
)

// Experience is a single per-player state transition.
type Experience struct {
	ID          string
	EnvID       string
	Player      string
	Episode     int
	Step        int
	State       []float32
	Action      int
	Reward      float64
	NextState   []float32
	Done        bool
	ActionMask  []float64
	CollectedAt time.Time
}
