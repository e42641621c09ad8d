package registry

import (
	"sort"

	"github.com/goliatone/go-formfields/pkg/fields"
)

// Query selects entities.
//
// With a specific Subtype, an entity registered for that subtype wins over a
// global one with the same id. AllSubtypes ignores Subtype and returns every
// registration for the object type, deduplicated by id: subtype registrations
// win over global ones, and among subtypes the first in name order wins. An
// empty ObjectType matches everything.
type Query struct {
	// Kind filters by kind. Empty matches every kind.
	Kind        fields.Kind
	ObjectType  string
	Subtype     string
	AllSubtypes bool
	// Parent keeps only children of the named container.
	Parent string
}

type match struct {
	key   key
	entry entry
}

// Get returns the entity registered under the exact key, falling back to
// the global registration for the object type.
func (r *Registry) Get(kind fields.Kind, scope fields.Scope, id string) (fields.Entity, bool) {
	scope = fields.NewScope(scope.ObjectType, scope.Subtype)
	id = fields.NormalizeID(id)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[key{kind: kind, scope: scope, id: id}]; ok {
		return e.entity, true
	}
	if scope.Global() {
		return nil, false
	}
	if e, ok := r.entries[key{kind: kind, scope: scope.WithSubtype(""), id: id}]; ok {
		return e.entity, true
	}
	return nil, false
}

// Screen looks up a screen.
func (r *Registry) Screen(scope fields.Scope, id string) (*fields.Container, bool) {
	return getTyped[*fields.Container](r, fields.KindScreen, scope, id)
}

// Section looks up a section.
func (r *Registry) Section(scope fields.Scope, id string) (*fields.Container, bool) {
	return getTyped[*fields.Container](r, fields.KindSection, scope, id)
}

// Field looks up a field.
func (r *Registry) Field(scope fields.Scope, id string) (*fields.Field, bool) {
	return getTyped[*fields.Field](r, fields.KindField, scope, id)
}

// Control looks up a control.
func (r *Registry) Control(scope fields.Scope, id string) (*fields.Control, bool) {
	return getTyped[*fields.Control](r, fields.KindControl, scope, id)
}

func getTyped[T fields.Entity](r *Registry, kind fields.Kind, scope fields.Scope, id string) (T, bool) {
	var zero T
	entity, ok := r.Get(kind, scope, id)
	if !ok {
		return zero, false
	}
	typed, ok := entity.(T)
	return typed, ok
}

// Find returns the entities selected by q ordered by priority, then
// registration order.
func (r *Registry) Find(q Query) []fields.Entity {
	matches := r.matches(q)
	out := make([]fields.Entity, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.entry.entity)
	}
	return out
}

func (r *Registry) matches(q Query) []match {
	q.ObjectType = fields.NewScope(q.ObjectType, "").ObjectType
	want := fields.NewScope(q.ObjectType, q.Subtype)
	q.Parent = fields.NormalizeID(q.Parent)

	r.mu.RLock()
	candidates := make([]match, 0, len(r.entries))
	for k, e := range r.entries {
		if q.Kind != "" && k.kind != q.Kind {
			continue
		}
		switch {
		case q.ObjectType == "":
		case q.AllSubtypes:
			if k.scope.ObjectType != q.ObjectType {
				continue
			}
		default:
			if !k.scope.Matches(want) {
				continue
			}
		}
		candidates = append(candidates, match{key: k, entry: e})
	}
	r.mu.RUnlock()

	if q.ObjectType != "" {
		candidates = dedupe(candidates)
	}
	// the parent filter runs on the winners so an overridden entity never
	// resurfaces under its old parent
	if q.Parent != "" {
		kept := candidates[:0]
		for _, c := range candidates {
			if parentOf(c.entry.entity) == q.Parent {
				kept = append(kept, c)
			}
		}
		candidates = kept
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].entry, candidates[j].entry
		if a.entity.Priority() != b.entity.Priority() {
			return a.entity.Priority() < b.entity.Priority()
		}
		return a.order < b.order
	})
	return candidates
}

// dedupe keeps one entity per (kind, id): subtype registrations beat global
// ones and lower subtype names beat higher ones.
func dedupe(candidates []match) []match {
	type ident struct {
		kind fields.Kind
		id   string
	}
	best := make(map[ident]match, len(candidates))
	for _, c := range candidates {
		id := ident{kind: c.key.kind, id: c.key.id}
		current, ok := best[id]
		if !ok || preferred(c.key.scope, current.key.scope) {
			best[id] = c
		}
	}
	out := make([]match, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	return out
}

func preferred(candidate, current fields.Scope) bool {
	if candidate.Global() != current.Global() {
		return !candidate.Global()
	}
	return candidate.Subtype < current.Subtype
}

func parentOf(entity fields.Entity) string {
	if parented, ok := entity.(fields.Parented); ok {
		return parented.ParentID()
	}
	return ""
}

// Screens returns the screens visible to a scope query.
func (r *Registry) Screens(scope fields.Scope) []*fields.Container {
	return findTyped[*fields.Container](r, scopeQuery(fields.KindScreen, scope, ""))
}

// Sections returns the sections of a screen. An empty screen returns every
// section in scope.
func (r *Registry) Sections(scope fields.Scope, screen string) []*fields.Container {
	return findTyped[*fields.Container](r, scopeQuery(fields.KindSection, scope, screen))
}

// Fields returns the fields of a section. An empty section returns every
// field in scope.
func (r *Registry) Fields(scope fields.Scope, section string) []*fields.Field {
	return findTyped[*fields.Field](r, scopeQuery(fields.KindField, scope, section))
}

// Controls returns the controls of a section. An empty section returns
// every control in scope.
func (r *Registry) Controls(scope fields.Scope, section string) []*fields.Control {
	return findTyped[*fields.Control](r, scopeQuery(fields.KindControl, scope, section))
}

// Containers returns the screens followed by the sections visible to the
// scope query.
func (r *Registry) Containers(objectType, subtype string) []*fields.Container {
	scope := fields.NewScope(objectType, subtype)
	return append(r.Screens(scope), r.Sections(scope, "")...)
}

func scopeQuery(kind fields.Kind, scope fields.Scope, parent string) Query {
	return Query{Kind: kind, ObjectType: scope.ObjectType, Subtype: scope.Subtype, Parent: parent}
}

func findTyped[T fields.Entity](r *Registry, q Query) []T {
	entities := r.Find(q)
	out := make([]T, 0, len(entities))
	for _, entity := range entities {
		if typed, ok := entity.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

// Grouped returns every entity of kind grouped by object type, then subtype
// ("" for global registrations). Groups are ordered like Find.
func (r *Registry) Grouped(kind fields.Kind) map[string]map[string][]fields.Entity {
	out := make(map[string]map[string][]fields.Entity)
	for _, m := range r.matches(Query{Kind: kind}) {
		byType := out[m.key.scope.ObjectType]
		if byType == nil {
			byType = make(map[string][]fields.Entity)
			out[m.key.scope.ObjectType] = byType
		}
		byType[m.key.scope.Subtype] = append(byType[m.key.scope.Subtype], m.entry.entity)
	}
	return out
}

// Remove deletes the entity under the exact key. Children of a removed
// container stay registered. Missing keys are a no-op.
func (r *Registry) Remove(kind fields.Kind, scope fields.Scope, id string) bool {
	k := key{kind: kind, scope: fields.NewScope(scope.ObjectType, scope.Subtype), id: fields.NormalizeID(id)}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[k]; !ok {
		return false
	}
	delete(r.entries, k)
	return true
}

// Clear removes every entity matching q and returns how many were removed.
// Unlike Find, a specific Subtype only clears that subtype's registrations,
// never the global ones.
func (r *Registry) Clear(q Query) int {
	objectType := fields.NewScope(q.ObjectType, "").ObjectType
	want := fields.NewScope(q.ObjectType, q.Subtype)
	parent := fields.NormalizeID(q.Parent)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for k, e := range r.entries {
		if q.Kind != "" && k.kind != q.Kind {
			continue
		}
		if parent != "" && parentOf(e.entity) != parent {
			continue
		}
		if objectType != "" {
			if k.scope.ObjectType != objectType {
				continue
			}
			if !q.AllSubtypes && k.scope != want {
				continue
			}
		}
		delete(r.entries, k)
		removed++
	}
	return removed
}
