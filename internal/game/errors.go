package game

import "errors"

var (
	ErrUnknownPlayer = errors.New("unknown player id")
	ErrNotYourTurn   = errors.New("not this player's turn")
	ErrInvalidAction = errors.New("invalid action")
	ErrSlotFilled    = errors.New("round slot already filled")
	ErrActionUsed    = errors.New("action already used this episode")
	ErrEpisodeOver   = errors.New("episode is over")
	ErrUnknownEnv    = errors.New("unknown environment")
)
