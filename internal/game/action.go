package game

import "fmt"

// Action is one of the three discrete throws. Unplayed is the sentinel used in
// round-state snapshots for a slot that has not been filled yet; it is never a
// legal input to Step.
type Action int8

const (
	Rock Action = iota
	Paper
	Scissors
	Unplayed
)

// NumActions counts the playable actions. Unplayed is excluded.
const NumActions = 3

// Valid reports whether a is a playable action value.
func (a Action) Valid() bool {
	return a >= Rock && a < NumActions
}

func (a Action) String() string {
	switch a {
	case Rock:
		return "rock"
	case Paper:
		return "paper"
	case Scissors:
		return "scissors"
	case Unplayed:
		return "unplayed"
	}
	return fmt.Sprintf("action(%d)", int8(a))
}

// ParseAction converts a throw name into its Action value.
func ParseAction(s string) (Action, error) {
	switch s {
	case "rock":
		return Rock, nil
	case "paper":
		return Paper, nil
	case "scissors":
		return Scissors, nil
	}
	return Unplayed, fmt.Errorf("parse action %q: %w", s, ErrInvalidAction)
}
