package experience

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrBufferClosed is returned when operations are attempted on a closed buffer.
var ErrBufferClosed = errors.New("experience buffer is closed")

// Buffer is a thread-safe circular buffer holding experiences until a trainer
// drains them. When full, the oldest experience is dropped.
type Buffer struct {
	mu       sync.RWMutex
	buffer   []*Experience
	capacity int
	size     int
	head     int // write position
	tail     int // read position
	closed   bool

	totalAdded   int64
	totalDropped int64

	logger zerolog.Logger
}

// NewBuffer creates a buffer with the specified capacity.
func NewBuffer(capacity int, logger zerolog.Logger) *Buffer {
	if capacity <= 0 {
		capacity = 10000
	}
	return &Buffer{
		buffer:   make([]*Experience, capacity),
		capacity: capacity,
		logger:   logger.With().Str("component", "experience_buffer").Logger(),
	}
}

// Add appends an experience, dropping the oldest entry if at capacity.
func (b *Buffer) Add(exp *Experience) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBufferClosed
	}
	b.add(exp)
	return nil
}

// AddBatch appends multiple experiences under one lock acquisition.
func (b *Buffer) AddBatch(experiences []*Experience) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBufferClosed
	}
	for _, exp := range experiences {
		b.add(exp)
	}
	if len(experiences) > 0 {
		b.logger.Debug().
			Int("batch_size", len(experiences)).
			Int64("total_added", b.totalAdded).
			Msg("Added batch of experiences")
	}
	return nil
}

func (b *Buffer) add(exp *Experience) {
	if b.size >= b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.totalDropped++
	} else {
		b.size++
	}
	b.buffer[b.head] = exp
	b.head = (b.head + 1) % b.capacity
	b.totalAdded++
}

// Get drains up to n experiences in insertion order.
func (b *Buffer) Get(n int) []*Experience {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n > b.size {
		n = b.size
	}
	result := make([]*Experience, n)
	for i := 0; i < n; i++ {
		result[i] = b.buffer[b.tail]
		b.tail = (b.tail + 1) % b.capacity
		b.size--
	}
	return result
}

// GetAll drains every buffered experience.
func (b *Buffer) GetAll() []*Experience {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]*Experience, b.size)
	for i := 0; i < len(result); i++ {
		result[i] = b.buffer[b.tail]
		b.tail = (b.tail + 1) % b.capacity
	}
	b.size = 0
	return result
}

// Size returns the current number of buffered experiences.
func (b *Buffer) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Capacity returns the maximum number of buffered experiences.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Clear removes all buffered experiences.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.size = 0
	b.head = 0
	b.tail = 0
	b.buffer = make([]*Experience, b.capacity)
}

// Close marks the buffer closed; further adds fail.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.logger.Info().
		Int64("total_added", b.totalAdded).
		Int64("total_dropped", b.totalDropped).
		Msg("Buffer closed")
	return nil
}

// Stats returns buffer statistics.
func (b *Buffer) Stats() BufferStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return BufferStats{
		CurrentSize:    b.size,
		Capacity:       b.capacity,
		TotalAdded:     b.totalAdded,
		TotalDropped:   b.totalDropped,
		UtilizationPct: float64(b.size) / float64(b.capacity) * 100,
	}
}

// BufferStats contains buffer statistics.
type BufferStats struct {
	CurrentSize    int
	Capacity       int
	TotalAdded     int64
	TotalDropped   int64
	UtilizationPct float64
}

// BufferManager manages one buffer per environment or run.
type BufferManager struct {
	mu      sync.RWMutex
	buffers map[string]*Buffer
	logger  zerolog.Logger

	defaultCapacity int
}

// NewBufferManager creates a new buffer manager.
func NewBufferManager(defaultCapacity int, logger zerolog.Logger) *BufferManager {
	return &BufferManager{
		buffers:         make(map[string]*Buffer),
		defaultCapacity: defaultCapacity,
		logger:          logger.With().Str("component", "buffer_manager").Logger(),
	}
}

// GetOrCreateBuffer gets an existing buffer or creates a new one.
func (m *BufferManager) GetOrCreateBuffer(key string) *Buffer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if buffer, exists := m.buffers[key]; exists {
		return buffer
	}
	buffer := NewBuffer(m.defaultCapacity, m.logger)
	m.buffers[key] = buffer

	m.logger.Debug().
		Str("key", key).
		Int("capacity", m.defaultCapacity).
		Msg("Created new buffer")
	return buffer
}

// GetBuffer retrieves a buffer by key.
func (m *BufferManager) GetBuffer(key string) (*Buffer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	buffer, exists := m.buffers[key]
	return buffer, exists
}

// RemoveBuffer removes and closes a buffer.
func (m *BufferManager) RemoveBuffer(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if buffer, exists := m.buffers[key]; exists {
		if err := buffer.Close(); err != nil {
			return err
		}
		delete(m.buffers, key)
	}
	return nil
}

// CloseAll closes all managed buffers.
func (m *BufferManager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, buffer := range m.buffers {
		if err := buffer.Close(); err != nil {
			m.logger.Error().
				Err(err).
				Str("key", key).
				Msg("Failed to close buffer")
		}
	}
	m.buffers = make(map[string]*Buffer)
	return nil
}
