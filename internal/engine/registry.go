package engine

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Factory is a function that creates an Engine instance.
type Factory func() (Engine, error)

var registry = &Registry{
	engines: make(map[string]Factory),
}

// UnknownDialectError reports a driver name no engine was registered for.
type UnknownDialectError struct {
	Dialect string
	// Known lists the registered dialects in sorted order.
	Known []string
}

func (e *UnknownDialectError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unsupported driver %q (no engines registered)", e.Dialect)
	}
	return fmt.Sprintf("unsupported driver %q (supported: %s)", e.Dialect, strings.Join(e.Known, ", "))
}

// Registry maps dialect names, as they appear in the driver setting, to
// engine factories. Aliases register the same factory twice.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Factory
}

// Register adds an engine factory to the registry.
// Panics if the dialect is already registered.
func (r *Registry) Register(dialect string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.engines[dialect]; exists {
		panic(fmt.Sprintf("engine: dialect %q already registered", dialect))
	}
	r.engines[dialect] = factory
}

// New creates an Engine for dialect. An unregistered dialect yields an
// *UnknownDialectError.
func (r *Registry) New(dialect string) (Engine, error) {
	r.mu.RLock()
	factory, exists := r.engines[dialect]
	r.mu.RUnlock()

	if !exists {
		return nil, &UnknownDialectError{Dialect: dialect, Known: r.List()}
	}
	return factory()
}

// List returns the registered dialect names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dialects := make([]string, 0, len(r.engines))
	for dialect := range r.engines {
		dialects = append(dialects, dialect)
	}
	slices.Sort(dialects)
	return dialects
}

// IsRegistered reports whether a dialect is registered.
func (r *Registry) IsRegistered(dialect string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.engines[dialect]
	return exists
}

// Register makes an engine available to New under dialect.
func Register(dialect string, factory Factory) {
	registry.Register(dialect, factory)
}

// ListRegistered returns the dialect names accepted as drivers.
func ListRegistered() []string {
	return registry.List()
}

// IsDialectSupported reports whether dialect names a registered engine.
func IsDialectSupported(dialect string) bool {
	return registry.IsRegistered(dialect)
}
