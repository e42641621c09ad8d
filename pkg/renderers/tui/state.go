package tui

import (
	"net/url"
	"strings"
)

// State tracks collected values keyed by field id, in prompt order. Several
// controls may bind one field; the last answer wins.
type State struct {
	order    []string
	values   map[string][]string
	multiple map[string]bool
	labels   map[string]string
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		values:   make(map[string][]string),
		multiple: make(map[string]bool),
		labels:   make(map[string]string),
	}
}

// Set records the submitted values for field. A nil slice marks the field as
// answered but absent from the submission (an unchecked checkbox).
func (s *State) Set(field, label string, multiple bool, values ...string) {
	field = strings.TrimSpace(field)
	if field == "" {
		return
	}
	if _, ok := s.values[field]; !ok {
		s.order = append(s.order, field)
	}
	s.values[field] = append([]string(nil), values...)
	s.multiple[field] = multiple
	if label != "" {
		s.labels[field] = label
	}
}

// Get returns the collected values for field.
func (s *State) Get(field string) ([]string, bool) {
	values, ok := s.values[field]
	return values, ok
}

// Fields lists field ids in prompt order.
func (s *State) Fields() []string {
	return append([]string(nil), s.order...)
}

// Form returns the values as submitted form data. Multi-value fields use the
// "field[]" key so the save handler sees the same names the HTML form posts.
func (s *State) Form() url.Values {
	out := url.Values{}
	for _, field := range s.order {
		values := s.values[field]
		if len(values) == 0 {
			continue
		}
		key := field
		if s.multiple[field] {
			key += "[]"
		}
		out[key] = append([]string(nil), values...)
	}
	return out
}

// Map returns a JSON-friendly view: strings for single values, string slices
// for multi-value fields.
func (s *State) Map() map[string]any {
	out := make(map[string]any, len(s.order))
	for _, field := range s.order {
		values := s.values[field]
		switch {
		case s.multiple[field]:
			list := make([]string, len(values))
			copy(list, values)
			out[field] = list
		case len(values) == 0:
			out[field] = nil
		default:
			out[field] = values[0]
		}
	}
	return out
}

func stateFromForm(form url.Values, base *State) *State {
	out := NewState()
	for _, field := range base.order {
		key := field
		if base.multiple[field] {
			key += "[]"
		}
		out.Set(field, base.labels[field], base.multiple[field], form[key]...)
	}
	return out
}
