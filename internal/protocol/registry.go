package protocol

import (
	"fmt"
	"sync"
)

// IdentifierFactory builds a fresh Identifier for one connection attempt.
type IdentifierFactory func() Identifier

// InitializerFactory builds a fresh Initializer for one connection attempt.
type InitializerFactory func() Initializer

// entry bundles the two factories registered under one protocol name.
type entry struct {
	newIdentifier  IdentifierFactory
	newInitializer InitializerFactory
}

// Registry maps protocol name -> factory pair (spec section 4.3, "Registry
// maps protocol name to factory"). The zero value is ready to use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]entry{}}
}

// Register adds (or replaces) the factory pair for protocol name.
func (r *Registry) Register(name string, newIdentifier IdentifierFactory, newInitializer InitializerFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries == nil {
		r.entries = map[string]entry{}
	}
	r.entries[name] = entry{newIdentifier: newIdentifier, newInitializer: newInitializer}
}

// NewIdentifier instantiates a fresh Identifier for protocol name.
func (r *Registry) NewIdentifier(name string) (Identifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("protocol %q is not registered", name)
	}
	return e.newIdentifier(), nil
}

// NewInitializer instantiates a fresh Initializer for protocol name.
func (r *Registry) NewInitializer(name string) (Initializer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("protocol %q is not registered", name)
	}
	return e.newInitializer(), nil
}

// Names returns every registered protocol name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	return out
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}
