package game

// NumRounds is the fixed episode length: three rounds, one throw per seat.
const NumRounds = 3

// NumSeats is the fixed number of player positions.
const NumSeats = 2

// Seat is a player's fixed position, independent of whose turn it is.
type Seat int

// Other returns the opposing seat.
func (s Seat) Other() Seat {
	return 1 - s
}

// RoundGrid holds the per-round, per-seat throws. Empty slots carry Unplayed.
type RoundGrid [NumRounds][NumSeats]Action

// Mask marks which throws remain usable for one player this episode.
type Mask [NumActions]bool

// Vector renders the mask as the binary vector handed to policies: 1 = usable.
func (m Mask) Vector() []float64 {
	v := make([]float64, NumActions)
	for a, ok := range m {
		if ok {
			v[a] = 1
		}
	}
	return v
}

// Count returns the number of still-usable throws.
func (m Mask) Count() int {
	n := 0
	for _, ok := range m {
		if ok {
			n++
		}
	}
	return n
}

// Observation is what a player sees when asked to act: the full round-state
// snapshot (shared verbatim across both players) and that player's own mask.
type Observation struct {
	RealObs    RoundGrid
	ActionMask Mask
}

// Snapshot is a copy of the engine's mutable state, used by drivers and tests.
type Snapshot struct {
	RoundIndex int
	ActiveSeat Seat
	Rounds     RoundGrid
	Masks      [NumSeats]Mask
	Scores     [NumSeats]float64
	Done       bool
}

func newRoundGrid() RoundGrid {
	var g RoundGrid
	for r := range g {
		for s := range g[r] {
			g[r][s] = Unplayed
		}
	}
	return g
}

func fullMask() Mask {
	return Mask{true, true, true}
}
