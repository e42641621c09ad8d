package controls

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-formfields/pkg/datastore"
)

// RenderFunc produces markup for a control view.
type RenderFunc func(view View, data RenderData) (string, error)

// ParseFunc turns submitted form values into a raw field value. ok is false
// when nothing should be saved.
type ParseFunc func(values []string) (value any, ok bool, err error)

// Script describes JavaScript dependencies a control needs to emit once per
// render.
type Script struct {
	Src    string
	Type   string
	Inline string
	Async  bool
	Defer  bool
	Module bool
	Attrs  map[string]string
}

// Descriptor bundles a control variant with its asset dependencies.
type Descriptor struct {
	Name   string
	Render RenderFunc
	Parse  ParseFunc
	// DataType is the default data type of fields rendered by this variant.
	DataType datastore.DataType
	// Multiple variants submit several values under "name[]".
	Multiple    bool
	Stylesheets []string
	Scripts     []Script
}

// Registry tracks control variants keyed by type tag. Callers can register
// new variants or override defaults.
type Registry struct {
	mu       sync.RWMutex
	variants map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		variants: make(map[string]Descriptor),
	}
}

// Clone returns a deep copy of the registry to allow isolated mutations.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for name, descriptor := range r.variants {
		cloned.variants[name] = cloneDescriptor(descriptor)
	}
	return cloned
}

// Register associates a descriptor with the provided type tag. Existing
// entries are replaced.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	if name = normalize(name); name == "" {
		return fmt.Errorf("controls: control type is required")
	}
	if descriptor.Render == nil {
		return fmt.Errorf("controls: renderer for %q is nil", name)
	}
	if descriptor.Parse == nil {
		descriptor.Parse = parseScalar
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	descriptor.Name = name
	r.variants[name] = cloneDescriptor(descriptor)
	return nil
}

// MustRegister mirrors Register but panics on error, simplifying default
// registry setup.
func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor fetches a descriptor by type tag.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.variants[normalize(name)]
	if !ok {
		return Descriptor{}, false
	}
	return cloneDescriptor(descriptor), true
}

// Has reports whether name is a registered type tag.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.variants[normalize(name)]
	return ok
}

// Names returns a sorted slice of registered type tags.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.variants))
	for name := range r.variants {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DataType returns the default data type for fields rendered by the variant.
// A truthy "multiple" option turns scalar variants into arrays.
func (r *Registry) DataType(name string, options map[string]any) datastore.DataType {
	descriptor, ok := r.Descriptor(name)
	if !ok {
		return ""
	}
	if descriptor.Multiple || optionBool(options, "multiple") {
		return datastore.DataTypeArray
	}
	return descriptor.DataType
}

// Assets resolves dependency aggregates for the provided type tags.
func (r *Registry) Assets(names []string) (stylesheets []string, scripts []Script) {
	if len(names) == 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seenStyles := make(map[string]struct{})
	seenScripts := make(map[string]struct{})

	for _, name := range names {
		descriptor, ok := r.variants[normalize(name)]
		if !ok {
			continue
		}
		for _, href := range descriptor.Stylesheets {
			if href == "" {
				continue
			}
			if _, exists := seenStyles[href]; exists {
				continue
			}
			seenStyles[href] = struct{}{}
			stylesheets = append(stylesheets, href)
		}
		for _, script := range descriptor.Scripts {
			key := scriptKey(script)
			if _, exists := seenScripts[key]; exists {
				continue
			}
			seenScripts[key] = struct{}{}
			scripts = append(scripts, script)
		}
	}
	return stylesheets, scripts
}

func cloneDescriptor(src Descriptor) Descriptor {
	clone := src
	clone.Stylesheets = slices.Clone(src.Stylesheets)
	clone.Scripts = make([]Script, len(src.Scripts))
	for idx, script := range src.Scripts {
		script.Attrs = cloneStringMap(script.Attrs)
		clone.Scripts[idx] = script
	}
	return clone
}

func cloneStringMap(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}

func scriptKey(script Script) string {
	if script.Src != "" {
		return "src:" + script.Src
	}
	return "inline:" + script.Inline
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
