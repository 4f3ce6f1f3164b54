package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlbench/norepeat-rps/internal/testutil"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	logger := testutil.NopLogger()
	return NewEngine(Config{
		Rng:    testutil.NewTestRNG(42),
		Logger: &logger,
	})
}

func TestResetReturnsStartingPlayerOnly(t *testing.T) {
	e := newTestEngine(t)

	obs := e.ResetFrom(0)
	require.Len(t, obs, 1)

	ob, ok := obs["player_1"]
	require.True(t, ok, "forced starting seat 0 must map to player_1")
	assert.Equal(t, fullMask(), ob.ActionMask)
	assert.Equal(t, newRoundGrid(), ob.RealObs)
	assert.Equal(t, "player_1", e.ActivePlayer())
}

func TestFirstStepHandsTurnToOpponent(t *testing.T) {
	e := newTestEngine(t)
	e.ResetFrom(0)

	res, err := e.Step("player_1", Rock)
	require.NoError(t, err)

	require.Len(t, res.Observations, 1)
	ob, ok := res.Observations["player_2"]
	require.True(t, ok)

	assert.Equal(t, fullMask(), ob.ActionMask, "opponent's mask is untouched")
	assert.Equal(t, Rock, ob.RealObs[0][0], "round slot (0, seat 0) must hold the throw")
	assert.Equal(t, Unplayed, ob.RealObs[0][1])
	assert.Equal(t, 0.0, res.Rewards["player_2"])
	assert.False(t, res.Done)
	assert.Empty(t, res.Info)

	st := e.State()
	assert.Equal(t, 0, st.RoundIndex, "round is still open")
	assert.Equal(t, Mask{false, true, true}, st.Masks[0], "rock is spent for seat 0")
}

func TestRoundResolutionDeliversNextPlayersPayoff(t *testing.T) {
	e := newTestEngine(t)
	e.ResetFrom(0)

	_, err := e.Step("player_1", Rock)
	require.NoError(t, err)

	res, err := e.Step("player_2", Scissors)
	require.NoError(t, err)

	require.Len(t, res.Observations, 1)
	_, ok := res.Observations["player_1"]
	require.True(t, ok)

	assert.Equal(t, 1.0, res.Rewards["player_1"], "rock beats scissors")
	assert.False(t, res.Done)

	st := e.State()
	assert.Equal(t, 1, st.RoundIndex)
	assert.Equal(t, [NumSeats]float64{1, -1}, st.Scores)
}

func TestLoserRewardArrivesOneStepLate(t *testing.T) {
	e := newTestEngine(t)
	e.ResetFrom(0)

	_, err := e.Step("player_1", Rock)
	require.NoError(t, err)
	_, err = e.Step("player_2", Scissors)
	require.NoError(t, err)

	// player_2's -1 from round 0 is delivered only once player_2 is asked
	// to act again, after player_1 opens round 1.
	res, err := e.Step("player_1", Paper)
	require.NoError(t, err)

	assert.Equal(t, -1.0, res.Rewards["player_2"])
	assert.False(t, res.Done)
}

func TestTerminalStepRewardsBothPlayers(t *testing.T) {
	e := newTestEngine(t)
	e.ResetFrom(0)

	throws := []struct {
		player string
		action Action
	}{
		{"player_1", Rock}, {"player_2", Scissors},
		{"player_1", Paper}, {"player_2", Rock},
		{"player_1", Scissors}, {"player_2", Paper},
	}

	var res StepResult
	var err error
	for i, th := range throws {
		res, err = e.Step(th.player, th.action)
		require.NoError(t, err, "throw %d", i)
		assert.Equal(t, i == len(throws)-1, res.Done)
	}

	require.Len(t, res.Observations, 2)
	require.Len(t, res.Rewards, 2)

	// Each player's terminal reward is the payoff of their own final round.
	assert.Equal(t, 1.0, res.Rewards["player_1"], "scissors beats paper")
	assert.Equal(t, -1.0, res.Rewards["player_2"])

	// Both terminal observations share the same final snapshot verbatim.
	assert.Equal(t,
		res.Observations["player_1"].RealObs,
		res.Observations["player_2"].RealObs)
	assert.Equal(t, Mask{}, res.Observations["player_1"].ActionMask, "all throws spent")

	st := e.State()
	assert.True(t, st.Done)
	assert.Equal(t, NumRounds, st.RoundIndex)
	assert.Equal(t, [NumSeats]float64{3, -3}, st.Scores)
}

func TestReplayedActionIsRejected(t *testing.T) {
	e := newTestEngine(t)
	e.ResetFrom(0)

	_, err := e.Step("player_1", Rock)
	require.NoError(t, err)
	_, err = e.Step("player_2", Scissors)
	require.NoError(t, err)

	before := e.State()
	_, err = e.Step("player_1", Rock)
	require.ErrorIs(t, err, ErrActionUsed)
	assert.Equal(t, before, e.State(), "rejected step must not mutate state")
}

func TestStepPreconditions(t *testing.T) {
	e := newTestEngine(t)
	e.ResetFrom(0)

	_, err := e.Step("player_2", Rock)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = e.Step("intruder", Rock)
	assert.ErrorIs(t, err, ErrUnknownPlayer)

	_, err = e.Step("player_1", Unplayed)
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = e.Step("player_1", Action(-1))
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestStepAfterTerminationFails(t *testing.T) {
	e := newTestEngine(t)
	e.ResetFrom(0)
	playFullEpisode(t, e)

	_, err := e.Step(e.ActivePlayer(), Rock)
	assert.ErrorIs(t, err, ErrEpisodeOver)
}

func TestResetIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	e.ResetFrom(0)
	playFullEpisode(t, e)

	e.Reset()
	obs := e.Reset()
	require.Len(t, obs, 1)

	st := e.State()
	assert.Equal(t, 0, st.RoundIndex)
	assert.False(t, st.Done)
	assert.Equal(t, newRoundGrid(), st.Rounds)
	assert.Equal(t, [NumSeats]Mask{fullMask(), fullMask()}, st.Masks)
	assert.Equal(t, [NumSeats]float64{}, st.Scores)
}

func TestRandomEpisodesRespectInvariants(t *testing.T) {
	e := newTestEngine(t)
	rng := testutil.NewTestRNG(7)

	for episode := 0; episode < 100; episode++ {
		obs := e.Reset()
		used := map[string]map[Action]bool{}
		steps := 0
		lastRound := 0

		for !e.Done() {
			require.Len(t, obs, 1)
			var player string
			var ob Observation
			for p, o := range obs {
				player, ob = p, o
			}
			require.Equal(t, e.ActivePlayer(), player)

			legal := make([]Action, 0, NumActions)
			for a := Rock; a < NumActions; a++ {
				if ob.ActionMask[a] {
					legal = append(legal, a)
				}
			}
			require.NotEmpty(t, legal, "masks can never exhaust before round 3")

			action := legal[rng.Intn(len(legal))]
			if used[player] == nil {
				used[player] = map[Action]bool{}
			}
			require.False(t, used[player][action])
			used[player][action] = true

			res, err := e.Step(player, action)
			require.NoError(t, err)
			steps++

			round := e.State().RoundIndex
			require.GreaterOrEqual(t, round, lastRound, "round index never regresses")
			lastRound = round
			obs = res.Observations
		}

		assert.Equal(t, 6, steps, "episode %d", episode)
		assert.Equal(t, NumRounds, e.State().RoundIndex)
		for _, actions := range used {
			assert.Len(t, actions, NumActions)
		}
	}
}

func TestCumulativeScoreIsZeroSum(t *testing.T) {
	e := newTestEngine(t)

	for episode := 0; episode < 20; episode++ {
		e.Reset()
		playFullEpisode(t, e)
		st := e.State()
		assert.Equal(t, 0.0, st.Scores[0]+st.Scores[1])
	}
}

// playFullEpisode drives the current episode to termination with arbitrary
// legal throws.
func playFullEpisode(t *testing.T, e *Engine) {
	t.Helper()
	for !e.Done() {
		player := e.ActivePlayer()
		seat, _ := e.SeatOf(player)
		st := e.State()

		var action Action
		for a := Rock; a < NumActions; a++ {
			if st.Masks[seat][a] {
				action = a
				break
			}
		}
		_, err := e.Step(player, action)
		require.NoError(t, err)
	}
}
