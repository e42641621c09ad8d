package choices

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Option is a single value/label pair offered by a control.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Source loads options on demand. Implementations should be cheap enough to
// call on every render; forms never cache the result.
type Source interface {
	Options(ctx context.Context) ([]Option, error)
}

// Static is a fixed option list.
type Static []Option

func (s Static) Options(context.Context) ([]Option, error) {
	return append([]Option(nil), s...), nil
}

// Func adapts a plain function into a Source.
type Func func(ctx context.Context) ([]Option, error)

func (f Func) Options(ctx context.Context) ([]Option, error) {
	if f == nil {
		return nil, nil
	}
	return f(ctx)
}

// FromMap builds a Static source from value => label pairs, ordered by label.
func FromMap(values map[string]string) Static {
	out := make(Static, 0, len(values))
	for value, label := range values {
		if strings.TrimSpace(label) == "" {
			label = value
		}
		out = append(out, Option{Value: value, Label: label})
	}
	slices.SortFunc(out, func(a, b Option) int {
		if c := strings.Compare(a.Label, b.Label); c != 0 {
			return c
		}
		return strings.Compare(a.Value, b.Value)
	})
	return out
}

// Registry resolves sources by name.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register stores source under name, replacing any previous entry.
func (r *Registry) Register(name string, source Source) error {
	name = normalizeName(name)
	if name == "" {
		return fmt.Errorf("choices: source name is required")
	}
	if source == nil {
		return fmt.Errorf("choices: source %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[name] = source
	return nil
}

// MustRegister panics when registration fails.
func (r *Registry) MustRegister(name string, source Source) {
	if err := r.Register(name, source); err != nil {
		panic(err)
	}
}

// Lookup returns the named source.
func (r *Registry) Lookup(name string) (Source, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	source, ok := r.sources[normalizeName(name)]
	return source, ok
}

// Names lists registered sources alphabetically.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve loads the options of the named source. Unknown names return
// ErrUnknownSource.
func (r *Registry) Resolve(ctx context.Context, name string) ([]Option, error) {
	source, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSource, name)
	}
	options, err := source.Options(ctx)
	if err != nil {
		return nil, fmt.Errorf("choices: %s: %w", normalizeName(name), err)
	}
	return options, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
