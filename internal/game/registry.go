package game

import (
	"fmt"
	"sort"
	"sync"
)

// EnvID is the stable name external trial-runners instantiate this
// environment by.
const EnvID = "norepeat-rps"

// Constructor builds a fresh engine from a config. A zero Config must yield a
// working engine.
type Constructor func(Config) *Engine

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
)

// Register makes an environment constructor available under a name. It panics
// on an empty name or a duplicate registration; both are wiring bugs.
func Register(name string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if name == "" {
		panic("game: Register with empty environment name")
	}
	if ctor == nil {
		panic("game: Register with nil constructor for " + name)
	}
	if _, dup := registry[name]; dup {
		panic("game: Register called twice for " + name)
	}
	registry[name] = ctor
}

// New instantiates a registered environment by name.
func New(name string, cfg Config) (*Engine, error) {
	registryMu.RLock()
	ctor, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("environment %q: %w", name, ErrUnknownEnv)
	}
	return ctor(cfg), nil
}

// Registered returns the sorted names of all registered environments.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(EnvID, NewEngine)
}
