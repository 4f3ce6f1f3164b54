package events

import (
	"time"

	"github.com/marlbench/norepeat-rps/internal/game"
)

// Event type constants
const (
	TypeEpisodeStarted  = "episode.started"
	TypeActionApplied   = "action.applied"
	TypeRoundResolved   = "round.resolved"
	TypeEpisodeFinished = "episode.finished"
)

// EpisodeStartedEvent is published when an episode is reset
type EpisodeStartedEvent struct {
	BaseEvent
	Players        []string
	StartingPlayer string
}

// NewEpisodeStartedEvent creates a new EpisodeStartedEvent
func NewEpisodeStartedEvent(episodeID string, players []string, startingPlayer string) *EpisodeStartedEvent {
	return &EpisodeStartedEvent{
		BaseEvent: BaseEvent{
			EventType: TypeEpisodeStarted,
			Time:      time.Now(),
			Episode:   episodeID,
		},
		Players:        players,
		StartingPlayer: startingPlayer,
	}
}

// ActionAppliedEvent is published after the engine accepts an action
type ActionAppliedEvent struct {
	BaseEvent
	Player string
	Action game.Action
	Step   int
	Round  int
}

// NewActionAppliedEvent creates a new ActionAppliedEvent
func NewActionAppliedEvent(episodeID, player string, action game.Action, step, round int) *ActionAppliedEvent {
	return &ActionAppliedEvent{
		BaseEvent: BaseEvent{
			EventType: TypeActionApplied,
			Time:      time.Now(),
			Episode:   episodeID,
		},
		Player: player,
		Action: action,
		Step:   step,
		Round:  round,
	}
}

// RoundResolvedEvent is published when both slots of a round are filled
type RoundResolvedEvent struct {
	BaseEvent
	Round   int
	Actions [game.NumSeats]game.Action
	Payoffs [game.NumSeats]float64
}

// NewRoundResolvedEvent creates a new RoundResolvedEvent
func NewRoundResolvedEvent(episodeID string, round int, actions [game.NumSeats]game.Action) *RoundResolvedEvent {
	p0, p1 := game.Payoff(actions[0], actions[1])
	return &RoundResolvedEvent{
		BaseEvent: BaseEvent{
			EventType: TypeRoundResolved,
			Time:      time.Now(),
			Episode:   episodeID,
		},
		Round:   round,
		Actions: actions,
		Payoffs: [game.NumSeats]float64{p0, p1},
	}
}

// EpisodeFinishedEvent is published when an episode terminates
type EpisodeFinishedEvent struct {
	BaseEvent
	Steps   int
	Returns map[string]float64
}

// NewEpisodeFinishedEvent creates a new EpisodeFinishedEvent
func NewEpisodeFinishedEvent(episodeID string, steps int, returns map[string]float64) *EpisodeFinishedEvent {
	return &EpisodeFinishedEvent{
		BaseEvent: BaseEvent{
			EventType: TypeEpisodeFinished,
			Time:      time.Now(),
			Episode:   episodeID,
		},
		Steps:   steps,
		Returns: returns,
	}
}
