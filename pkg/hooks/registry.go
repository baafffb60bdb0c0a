package hooks

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps symbolic hook names to hook functions. Profiles refer to
// hooks by name; registration happens explicitly at startup rather than by
// reflective import.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string]Hook
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string]Hook)}
}

// Register binds name to hook. Re-registering a name is an error so two
// packages cannot silently fight over the same symbolic reference.
func (r *Registry) Register(name string, hook Hook) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.hooks[name]; exists {
		return fmt.Errorf("hook %q already registered", name)
	}
	r.hooks[name] = hook
	return nil
}

// MustRegister is Register for startup wiring where a duplicate is a bug.
func (r *Registry) MustRegister(name string, hook Hook) {
	if err := r.Register(name, hook); err != nil {
		panic(err)
	}
}

// Resolve looks up hooks for the given names, preserving order.
func (r *Registry) Resolve(names []string) ([]Hook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resolved := make([]Hook, 0, len(names))
	for _, name := range names {
		hook, ok := r.hooks[name]
		if !ok {
			return nil, fmt.Errorf("hook %q not registered (have: %v)", name, r.names())
		}
		resolved = append(resolved, hook)
	}
	return resolved, nil
}

// names returns registered hook names sorted; callers must hold the lock.
func (r *Registry) names() []string {
	names := make([]string, 0, len(r.hooks))
	for name := range r.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
