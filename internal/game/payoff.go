package game

// payoffs[a0][a1] is seat 0's payoff when seat 0 throws a0 and seat 1 throws
// a1. Rock beats scissors, scissors beats paper, paper beats rock; ties pay 0.
var payoffs = [NumActions][NumActions]float64{
	Rock:     {0, -1, 1},
	Paper:    {1, 0, -1},
	Scissors: {-1, 1, 0},
}

// Payoff returns the zero-sum payoff pair for one resolved round, ordered by
// seat.
func Payoff(a0, a1 Action) (float64, float64) {
	p := payoffs[a0][a1]
	return p, -p
}
