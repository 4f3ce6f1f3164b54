package experience

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marlbench/norepeat-rps/internal/game"
)

// Collector implements a basic in-memory experience collector.
type Collector struct {
	experiences []*Experience
	mu          sync.Mutex
	maxSize     int
	envID       string
	serializer  *Serializer
	logger      zerolog.Logger

	totalDropped int64
}

// NewCollector creates a bounded experience collector for one environment.
func NewCollector(maxSize int, envID string, logger zerolog.Logger) *Collector {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &Collector{
		experiences: make([]*Experience, 0, maxSize),
		maxSize:     maxSize,
		envID:       envID,
		serializer:  NewSerializer(),
		logger:      logger.With().Str("component", "experience_collector").Logger(),
	}
}

// Record collects one completed transition for a player: the observation the
// player acted on, the action, the reward eventually delivered for it, and
// the observation delivered alongside that reward.
func (c *Collector) Record(player string, episode, step int, prev, next game.Observation, action game.Action, reward float64, done bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.experiences) >= c.maxSize {
		c.totalDropped++
		c.logger.Warn().
			Int("buffer_size", len(c.experiences)).
			Int("max_size", c.maxSize).
			Msg("Experience collector full, dropping experience")
		return
	}

	exp := &Experience{
		ID:          uuid.New().String(),
		EnvID:       c.envID,
		Player:      player,
		Episode:     episode,
		Step:        step,
		State:       c.serializer.ObservationToTensor(prev),
		Action:      int(action),
		Reward:      reward,
		NextState:   c.serializer.ObservationToTensor(next),
		Done:        done,
		ActionMask:  prev.ActionMask.Vector(),
		CollectedAt: time.Now(),
	}
	c.experiences = append(c.experiences, exp)

	c.logger.Debug().
		Str("experience_id", exp.ID).
		Str("player", player).
		Int("episode", episode).
		Int("step", step).
		Float64("reward", reward).
		Bool("done", done).
		Msg("Collected experience")
}

// Experiences returns a copy of all collected experiences.
func (c *Collector) Experiences() []*Experience {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]*Experience, len(c.experiences))
	copy(result, c.experiences)
	return result
}

// Count returns the current number of collected experiences.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.experiences)
}

// Latest returns the n most recent experiences.
func (c *Collector) Latest(n int) []*Experience {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n > len(c.experiences) {
		n = len(c.experiences)
	}
	start := len(c.experiences) - n
	result := make([]*Experience, n)
	copy(result, c.experiences[start:])
	return result
}

// Clear removes all experiences from the collector.
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.experiences = c.experiences[:0]
}
