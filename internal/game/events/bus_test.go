package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marlbench/norepeat-rps/internal/game"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	// Test function handler
	received := false
	var receivedEvent Event

	bus.SubscribeFunc(TypeEpisodeStarted, func(e Event) {
		received = true
		receivedEvent = e
	})

	// Publish event
	event := NewEpisodeStartedEvent("ep-1", []string{"player_1", "player_2"}, "player_1")
	bus.Publish(event)

	// Verify event was received
	assert.True(t, received, "Event handler should have been called")
	assert.NotNil(t, receivedEvent, "Event should have been received")
	assert.Equal(t, TypeEpisodeStarted, receivedEvent.Type())
	assert.Equal(t, "ep-1", receivedEvent.EpisodeID())
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	handler1Called := false
	handler2Called := false

	bus.SubscribeFunc(TypeRoundResolved, func(e Event) {
		handler1Called = true
	})
	bus.SubscribeFunc(TypeRoundResolved, func(e Event) {
		handler2Called = true
	})

	event := NewRoundResolvedEvent("ep-1", 0, [game.NumSeats]game.Action{game.Rock, game.Scissors})
	bus.Publish(event)

	assert.True(t, handler1Called)
	assert.True(t, handler2Called)
	assert.Equal(t, 2, bus.GetFuncHandlerCount(TypeRoundResolved))
}

func TestEventBusFiltersByType(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	bus.SubscribeFunc(TypeEpisodeFinished, func(e Event) {
		calls++
	})

	bus.Publish(NewActionAppliedEvent("ep-1", "player_1", game.Rock, 0, 0))
	assert.Equal(t, 0, calls)

	bus.Publish(NewEpisodeFinishedEvent("ep-1", 6, map[string]float64{"player_1": 1}))
	assert.Equal(t, 1, calls)
}

type recordingSubscriber struct {
	id     string
	types  map[string]bool
	events []Event
}

func (s *recordingSubscriber) ID() string { return s.id }

func (s *recordingSubscriber) HandleEvent(e Event) {
	s.events = append(s.events, e)
}

func (s *recordingSubscriber) InterestedIn(eventType string) bool {
	if s.types == nil {
		return true
	}
	return s.types[eventType]
}

func TestEventBusSubscribeUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	sub := &recordingSubscriber{id: "recorder"}

	bus.Subscribe(sub)
	assert.Equal(t, 1, bus.GetSubscriberCount())

	bus.Publish(NewEpisodeStartedEvent("ep-1", []string{"player_1", "player_2"}, "player_1"))
	assert.Len(t, sub.events, 1)

	bus.Unsubscribe("recorder")
	assert.Equal(t, 0, bus.GetSubscriberCount())

	bus.Publish(NewEpisodeStartedEvent("ep-2", []string{"player_1", "player_2"}, "player_1"))
	assert.Len(t, sub.events, 1)
}

func TestEventBusRecoversFromPanickingSubscriber(t *testing.T) {
	bus := NewEventBus()

	bus.SubscribeFunc(TypeActionApplied, func(e Event) {
		panic("bad handler")
	})
	healthy := false
	bus.SubscribeFunc(TypeActionApplied, func(e Event) {
		healthy = true
	})

	assert.NotPanics(t, func() {
		bus.Publish(NewActionAppliedEvent("ep-1", "player_1", game.Paper, 1, 0))
	})
	assert.True(t, healthy, "Healthy handler should still run after a panic")
}

func TestRoundResolvedEventComputesPayoffs(t *testing.T) {
	e := NewRoundResolvedEvent("ep-1", 2, [game.NumSeats]game.Action{game.Paper, game.Rock})

	assert.Equal(t, 2, e.Round)
	assert.Equal(t, [game.NumSeats]float64{1, -1}, e.Payoffs)
	assert.Equal(t, TypeRoundResolved, e.Type())
}
