package controls

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formfields/pkg/datastore"
)

// Traits summarises what the resolver knows about a control and its field.
type Traits struct {
	// Hint is an explicit type (control type, then field type). It wins when
	// registered in the variant registry.
	Hint       string
	DataType   datastore.DataType
	HasChoices bool
	Multiple   bool
	Options    map[string]any
}

// Matcher decides whether a variant should handle the supplied traits.
type Matcher func(traits Traits) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Resolver selects a control variant when a control omits its type. Higher
// priority wins; ties fall back to registration order.
type Resolver struct {
	mu       sync.RWMutex
	rules    []rule
	fallback string
}

// NewResolver constructs a resolver with the built-in matchers registered.
// Controls matching nothing fall back to text.
func NewResolver() *Resolver {
	r := &Resolver{fallback: TypeText}
	r.registerBuiltins()
	return r
}

// Register adds a matcher with the provided name and priority. Callers should
// avoid duplicate names.
func (r *Resolver) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := normalize(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the variant for traits. known reports whether a hint is a
// registered variant; pass nil to accept any non-empty hint.
func (r *Resolver) Resolve(traits Traits, known func(string) bool) string {
	if hint := normalize(traits.Hint); hint != "" && (known == nil || known(hint)) {
		return hint
	}
	if r == nil {
		return TypeText
	}

	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	fallback := r.fallback
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(traits) {
			return entry.name
		}
	}
	return fallback
}

func (r *Resolver) registerBuiltins() {
	r.Register(TypeCheckbox, 90, func(t Traits) bool {
		return t.DataType == datastore.DataTypeBool
	})

	r.Register(TypeCheckboxGroup, 80, func(t Traits) bool {
		return t.HasChoices && (t.DataType == datastore.DataTypeArray || t.Multiple)
	})

	r.Register(TypeRepeater, 70, func(t Traits) bool {
		return t.DataType == datastore.DataTypeArray
	})

	r.Register(TypeSelect, 60, func(t Traits) bool {
		return t.HasChoices
	})

	r.Register(TypeNumber, 50, func(t Traits) bool {
		return t.DataType == datastore.DataTypeInt || t.DataType == datastore.DataTypeFloat
	})

	r.Register(TypeTextarea, 40, func(t Traits) bool {
		_, ok := t.Options["rows"]
		return ok
	})

	r.Register(TypeEmail, 30, func(t Traits) bool {
		return strings.EqualFold(optionString(t.Options, "format", ""), "email")
	})

	r.Register(TypeURL, 30, func(t Traits) bool {
		return strings.EqualFold(optionString(t.Options, "format", ""), "url")
	})
}
