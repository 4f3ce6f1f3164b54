package subscribers

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlbench/norepeat-rps/internal/game"
	"github.com/marlbench/norepeat-rps/internal/game/events"
)

func TestLoggerSubscriberLogsEventFields(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	sub := NewLoggerSubscriber("test_logger", logger, zerolog.InfoLevel)
	require.Equal(t, "test_logger", sub.ID())

	event := events.NewRoundResolvedEvent("ep-7", 1, [game.NumSeats]game.Action{game.Scissors, game.Paper})
	sub.HandleEvent(event)

	out := buf.String()
	assert.Contains(t, out, `"event_type":"round.resolved"`)
	assert.Contains(t, out, `"episode_id":"ep-7"`)
	assert.Contains(t, out, `"action_0":"scissors"`)
	assert.Contains(t, out, `"payoff_0":1`)
}

func TestLoggerSubscriberFilter(t *testing.T) {
	sub := NewLoggerSubscriber("filtered", zerolog.Nop(), zerolog.DebugLevel)

	assert.True(t, sub.InterestedIn(events.TypeActionApplied), "No filter means all events")

	sub.SetEventFilter([]string{events.TypeEpisodeFinished})
	assert.True(t, sub.InterestedIn(events.TypeEpisodeFinished))
	assert.False(t, sub.InterestedIn(events.TypeActionApplied))

	sub.SetEventFilter(nil)
	assert.True(t, sub.InterestedIn(events.TypeActionApplied))
}

func TestLoggerSubscriberDevMode(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	sub := NewLoggerSubscriber("dev_logger", logger, zerolog.InfoLevel)
	sub.SetDevMode(true)

	sub.HandleEvent(events.NewEpisodeFinishedEvent("ep-1", 6, map[string]float64{"player_1": 1, "player_2": -1}))

	assert.Contains(t, buf.String(), `"event_data"`)
}
