package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// Config carries optional engine settings. The zero value is a valid
// configuration: default player ids, a time-seeded RNG, and a no-op logger.
type Config struct {
	// Players are the two distinct ids the external driver addresses the
	// seats by. Defaults to "player_1", "player_2".
	Players [NumSeats]string
	// Rng draws the starting seat at reset. Inject a seeded source for
	// reproducible episodes.
	Rng    *rand.Rand
	Logger *zerolog.Logger
}

// Engine is the turn-based masked-action game: two players, three rounds of
// rock-paper-scissors where each player may use each throw at most once per
// episode. One Engine serves one episode at a time and is reusable across
// episodes via Reset; concurrent episodes need independent instances.
type Engine struct {
	players [NumSeats]string
	rng     *rand.Rand
	logger  zerolog.Logger

	roundIndex int
	activeSeat Seat
	rounds     RoundGrid
	masks      [NumSeats]Mask
	scores     [NumSeats]float64
	pending    [NumSeats]float64
	done       bool
}

// StepResult is the alternating-turn response: observation and reward entries
// for the player(s) that must consume them, the episode-wide termination flag,
// and an always-empty info map kept for the driver contract.
type StepResult struct {
	Observations map[string]Observation
	Rewards      map[string]float64
	Done         bool
	Info         map[string]string
}

// NewEngine creates a game engine. Drivers call Reset to obtain the starting
// player's initial observation before stepping.
func NewEngine(cfg Config) *Engine {
	players := cfg.Players
	if players[0] == "" && players[1] == "" {
		players = [NumSeats]string{"player_1", "player_2"}
	}
	if players[0] == "" || players[1] == "" || players[0] == players[1] {
		panic(fmt.Sprintf("game: player ids must be two distinct non-empty strings, got %q", players))
	}

	rng := cfg.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "engine").Str("env", EnvID).Logger()
	}

	e := &Engine{
		players: players,
		rng:     rng,
		logger:  logger,
	}
	e.resetFrom(Seat(rng.Intn(NumSeats)))
	return e
}

// Players returns the seat-ordered player ids.
func (e *Engine) Players() [NumSeats]string {
	return e.players
}

// SeatOf maps a player id to its seat.
func (e *Engine) SeatOf(player string) (Seat, bool) {
	for s, p := range e.players {
		if p == player {
			return Seat(s), true
		}
	}
	return 0, false
}

// ActivePlayer returns the id of the player whose turn it is.
func (e *Engine) ActivePlayer() string {
	return e.players[e.activeSeat]
}

// Done reports whether the current episode has terminated.
func (e *Engine) Done() bool {
	return e.done
}

// State returns a copy of the mutable episode state.
func (e *Engine) State() Snapshot {
	return Snapshot{
		RoundIndex: e.roundIndex,
		ActiveSeat: e.activeSeat,
		Rounds:     e.rounds,
		Masks:      e.masks,
		Scores:     e.scores,
		Done:       e.done,
	}
}

// Reset starts a fresh episode with a randomly drawn starting seat and returns
// the observation map containing only the starting player's entry.
func (e *Engine) Reset() map[string]Observation {
	return e.ResetFrom(Seat(e.rng.Intn(NumSeats)))
}

// ResetFrom starts a fresh episode with a forced starting seat. Drivers that
// need reproducible openings (and tests) use this; normal episodes go through
// Reset.
func (e *Engine) ResetFrom(start Seat) map[string]Observation {
	e.resetFrom(start)
	e.logger.Debug().
		Str("starting_player", e.players[start]).
		Msg("Episode reset")
	return map[string]Observation{
		e.players[start]: e.observation(start),
	}
}

func (e *Engine) resetFrom(start Seat) {
	if start < 0 || start >= NumSeats {
		panic(fmt.Sprintf("game: starting seat %d out of range", start))
	}
	e.roundIndex = 0
	e.activeSeat = start
	e.rounds = newRoundGrid()
	for s := range e.masks {
		e.masks[s] = fullMask()
	}
	e.scores = [NumSeats]float64{}
	e.pending = [NumSeats]float64{}
	e.done = false
}

// Step accepts the active player's throw and advances the state machine. The
// returned maps follow the alternating delivery convention: mid-episode they
// hold only the newly active player's observation and pending reward; on the
// terminal step they hold entries for both players. Every precondition
// violation returns a wrapped sentinel error and leaves the state untouched.
func (e *Engine) Step(player string, action Action) (StepResult, error) {
	if e.done {
		return StepResult{}, fmt.Errorf("step by %q after round %d: %w", player, e.roundIndex, ErrEpisodeOver)
	}

	seat, ok := e.SeatOf(player)
	if !ok {
		return StepResult{}, fmt.Errorf("step by %q: %w", player, ErrUnknownPlayer)
	}
	if seat != e.activeSeat {
		return StepResult{}, fmt.Errorf("step by %q while %q is active: %w", player, e.ActivePlayer(), ErrNotYourTurn)
	}
	if !action.Valid() {
		return StepResult{}, fmt.Errorf("step by %q with %s: %w", player, action, ErrInvalidAction)
	}
	if e.rounds[e.roundIndex][seat] != Unplayed {
		return StepResult{}, fmt.Errorf("step by %q in round %d: %w", player, e.roundIndex, ErrSlotFilled)
	}
	if !e.masks[seat][action] {
		return StepResult{}, fmt.Errorf("step by %q with %s: %w", player, action, ErrActionUsed)
	}

	e.masks[seat][action] = false
	e.rounds[e.roundIndex][seat] = action
	next := seat.Other()

	e.logger.Debug().
		Str("player", player).
		Stringer("action", action).
		Int("round", e.roundIndex).
		Msg("Action accepted")

	if e.rounds[e.roundIndex][next] != Unplayed {
		e.resolveRound()
	}

	res := StepResult{
		Observations: make(map[string]Observation, NumSeats),
		Rewards:      make(map[string]float64, NumSeats),
		Done:         e.done,
		Info:         map[string]string{},
	}
	if e.done {
		// Terminal step: both players receive the final snapshot plus
		// their own mask, and their held pending reward.
		for s := Seat(0); s < NumSeats; s++ {
			res.Observations[e.players[s]] = e.observation(s)
			res.Rewards[e.players[s]] = e.takePending(s)
		}
	} else {
		res.Observations[e.players[next]] = e.observation(next)
		res.Rewards[e.players[next]] = e.takePending(next)
	}

	e.activeSeat = next
	return res, nil
}

// resolveRound settles the round both seats have now thrown for. Both payoffs
// become pending: the seat about to act receives its share in the same step's
// return, the acting seat's share is held until it is next asked to act.
func (e *Engine) resolveRound() {
	p0, p1 := Payoff(e.rounds[e.roundIndex][0], e.rounds[e.roundIndex][1])
	e.scores[0] += p0
	e.scores[1] += p1
	e.pending[0] += p0
	e.pending[1] += p1

	e.logger.Debug().
		Int("round", e.roundIndex).
		Stringer("seat0_action", e.rounds[e.roundIndex][0]).
		Stringer("seat1_action", e.rounds[e.roundIndex][1]).
		Float64("seat0_payoff", p0).
		Msg("Round resolved")

	e.roundIndex++
	if e.roundIndex == NumRounds {
		e.done = true
		e.logger.Info().
			Float64("score_"+e.players[0], e.scores[0]).
			Float64("score_"+e.players[1], e.scores[1]).
			Msg("Episode finished")
	}
}

func (e *Engine) takePending(s Seat) float64 {
	r := e.pending[s]
	e.pending[s] = 0
	return r
}

func (e *Engine) observation(s Seat) Observation {
	return Observation{
		RealObs:    e.rounds,
		ActionMask: e.masks[s],
	}
}
