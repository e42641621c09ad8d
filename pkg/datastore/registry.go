package datastore

import (
	"fmt"
	"slices"
	"sync"
)

// Factory constructs a DataStore for the supplied configuration.
type Factory func(cfg Config, backend Backend) (DataStore, error)

// Registry tracks store factories keyed by type tag. Callers can register new
// store types or override the defaults.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// NewDefaultRegistry returns a registry with the option and meta store types
// registered.
func NewDefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.MustRegister(TypeOption, NewOptionStore)
	reg.MustRegister(TypeMeta, NewMetaStore)
	return reg
}

// Register associates a factory with a type tag. Existing entries are
// replaced.
func (r *Registry) Register(name string, factory Factory) error {
	if name = normalize(name); name == "" {
		return fmt.Errorf("datastore: type name is required")
	}
	if factory == nil {
		return fmt.Errorf("datastore: factory for %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Has reports whether a factory exists for name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[normalize(name)]
	return ok
}

// Names returns the registered type tags sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Build dispatches on cfg.Type (falling back to DefaultType for the object
// type) and constructs the store.
func (r *Registry) Build(cfg Config, backend Backend) (DataStore, error) {
	storeType := normalize(cfg.Type)
	if storeType == "" {
		storeType = DefaultType(cfg.ObjectType)
	}

	r.mu.RLock()
	factory, ok := r.factories[storeType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, storeType)
	}

	cfg.Type = storeType
	store, err := factory(cfg, backend)
	if err != nil {
		return nil, err
	}
	return store, nil
}
