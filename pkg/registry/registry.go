package registry

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formfields/pkg/controls"
	"github.com/goliatone/go-formfields/pkg/datastore"
	"github.com/goliatone/go-formfields/pkg/datastore/memory"
	"github.com/goliatone/go-formfields/pkg/fields"
	"github.com/goliatone/go-formfields/pkg/sanitize"
)

var (
	// ErrUnknownKind is returned for kinds other than screen, section, field
	// and control.
	ErrUnknownKind = errors.New("registry: unknown kind")
	// ErrUnknownType is returned when a field names an unregistered store
	// type or sanitizer.
	ErrUnknownType = errors.New("registry: unknown type")
	// ErrFieldNotFound is returned when a control's field cannot be resolved.
	ErrFieldNotFound = errors.New("registry: field not found")
)

// Option customises the registry.
type Option func(*Registry)

// WithControlTypes overrides the control variant registry.
func WithControlTypes(types *controls.Registry) Option {
	return func(r *Registry) {
		r.controlTypes = types
	}
}

// WithControlRenderer overrides the renderer used by Control.Content.
func WithControlRenderer(renderer *controls.Renderer) Option {
	return func(r *Registry) {
		r.renderer = renderer
	}
}

// WithStoreTypes overrides the data store factory registry.
func WithStoreTypes(stores *datastore.Registry) Option {
	return func(r *Registry) {
		r.stores = stores
	}
}

// WithBackend sets the key/value backend every data store persists to.
func WithBackend(backend datastore.Backend) Option {
	return func(r *Registry) {
		r.backend = backend
	}
}

// WithSanitizers overrides the sanitizer registry.
func WithSanitizers(sanitizers *sanitize.Registry) Option {
	return func(r *Registry) {
		r.sanitizers = sanitizers
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

type key struct {
	kind  fields.Kind
	scope fields.Scope
	id    string
}

type entry struct {
	entity fields.Entity
	order  uint64
}

// Registry stores entities and the collaborators needed to build them.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[key]entry
	seq     uint64

	factories map[fields.Kind]map[string]Factory

	hooks       []InitHook
	initialized bool

	controlTypes *controls.Registry
	renderer     *controls.Renderer
	rendererErr  error
	rendererOnce sync.Once
	stores       *datastore.Registry
	backend      datastore.Backend
	sanitizers   *sanitize.Registry
	logger       *zap.Logger
}

// New constructs a registry. Missing collaborators are initialised with the
// built-in implementations and an in-memory backend.
func New(options ...Option) *Registry {
	r := &Registry{
		entries:   make(map[key]entry),
		factories: make(map[fields.Kind]map[string]Factory),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.controlTypes == nil {
		if r.renderer != nil {
			r.controlTypes = r.renderer.Types()
		} else {
			r.controlTypes = controls.NewDefaultRegistry()
		}
	}
	if r.stores == nil {
		r.stores = datastore.NewDefaultRegistry()
	}
	if r.backend == nil {
		r.backend = memory.New()
	}
	if r.sanitizers == nil {
		r.sanitizers = sanitize.NewDefaultRegistry()
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	r.registerDefaultFactories()
	return r
}

// ControlTypes exposes the control variant registry.
func (r *Registry) ControlTypes() *controls.Registry { return r.controlTypes }

// Stores exposes the data store factory registry.
func (r *Registry) Stores() *datastore.Registry { return r.stores }

// Backend exposes the persistence backend.
func (r *Registry) Backend() datastore.Backend { return r.backend }

// Sanitizers exposes the sanitizer registry.
func (r *Registry) Sanitizers() *sanitize.Registry { return r.sanitizers }

// Logger returns the registry logger.
func (r *Registry) Logger() *zap.Logger { return r.logger }

// ControlRenderer returns the renderer used for control content, building
// the default one on first use.
func (r *Registry) ControlRenderer() (*controls.Renderer, error) {
	r.rendererOnce.Do(func() {
		if r.renderer != nil {
			return
		}
		r.renderer, r.rendererErr = controls.NewRenderer(controls.WithTypes(r.controlTypes))
	})
	return r.renderer, r.rendererErr
}

// Len reports how many entities are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Reset drops every entity and pending init hook. Factories and
// collaborators are kept.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[key]entry)
	r.hooks = nil
	r.initialized = false
}
