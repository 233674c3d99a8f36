package accum

import (
	"log/slog"
	"sync"

	"github.com/gogpu/paintcore"
)

// Backend names.
const (
	BackendCPU  = "cpu"
	BackendWGPU = "wgpu"
)

// Factory creates a new accumulator instance. A factory may return
// nil when its backend is unavailable on this machine.
type Factory func() Accumulator

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// First available wins. GPU outranks CPU when both register.
	priority = []string{BackendWGPU, BackendCPU}
)

// Register registers a backend factory under name. Backend packages
// call this from init(); registering an existing name replaces it.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a backend. Useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}

// Get instantiates a backend by name, or nil if it is not registered
// or unavailable.
func Get(name string) Accumulator {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()
	if !ok {
		return nil
	}
	return factory()
}

// Default returns the best available backend by priority order.
func Default() Accumulator {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, name := range priority {
		if factory, ok := factories[name]; ok {
			if a := factory(); a != nil {
				return a
			}
		}
	}
	for _, factory := range factories {
		if a := factory(); a != nil {
			return a
		}
	}
	return nil
}

// Selector owns the session's active backend and the one-way fault
// downgrade. Once a GPU fault forces the session onto the CPU backend
// it stays there; the session never upgrades back mid-flight.
type Selector struct {
	mu         sync.Mutex
	current    Accumulator
	downgraded bool
}

// NewSelector picks the starting backend: the named preference if it
// is available, otherwise the priority default. Returns nil when no
// backend is registered.
func NewSelector(preferred string) *Selector {
	var a Accumulator
	if preferred != "" {
		a = Get(preferred)
	}
	if a == nil {
		a = Default()
	}
	if a == nil {
		return nil
	}
	return &Selector{current: a}
}

// Current returns the session's active backend.
func (s *Selector) Current() Accumulator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Downgraded reports whether a fault has forced the CPU backend.
func (s *Selector) Downgraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.downgraded
}

// Downgrade switches the session to the CPU backend in response to a
// backend fault and returns the new current. Calling it when already
// on the CPU backend is a no-op.
func (s *Selector) Downgrade(cause error) Accumulator {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.downgraded || s.current.Name() == BackendCPU {
		s.downgraded = true
		return s.current
	}
	paintcore.Logger().Warn("accumulator backend fault, downgrading to cpu",
		slog.String("from", s.current.Name()),
		slog.Any("cause", cause))
	s.current.Abort()
	if cpu := Get(BackendCPU); cpu != nil {
		s.current = cpu
	}
	s.downgraded = true
	return s.current
}
