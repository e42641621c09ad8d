package fields

import (
	"fmt"
	"strings"
)

// Kind identifies one of the four registry dimensions.
type Kind string

const (
	KindScreen  Kind = "screen"
	KindSection Kind = "section"
	KindField   Kind = "field"
	KindControl Kind = "control"
)

// Kinds lists every kind in hierarchy order.
func Kinds() []Kind {
	return []Kind{KindScreen, KindSection, KindField, KindControl}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindScreen, KindSection, KindField, KindControl:
		return true
	}
	return false
}

// Container reports whether k groups other entities.
func (k Kind) Container() bool {
	return k == KindScreen || k == KindSection
}

// ParseKind accepts singular or plural names ("field", "fields").
func ParseKind(raw string) (Kind, error) {
	kind := Kind(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), "s"))
	if !kind.Valid() {
		return "", fmt.Errorf("fields: unknown kind %q", raw)
	}
	return kind, nil
}

// Scope places an entity under an object type and subtype.
type Scope struct {
	ObjectType string `json:"object_type"`
	// Subtype refines the object type. Empty applies to all subtypes.
	Subtype string `json:"subtype,omitempty"`
}

// NewScope normalises both parts.
func NewScope(objectType, subtype string) Scope {
	return Scope{ObjectType: normalizeName(objectType), Subtype: normalizeName(subtype)}
}

// Global reports whether the scope applies to every subtype.
func (s Scope) Global() bool { return s.Subtype == "" }

// WithSubtype returns a copy of s with subtype replaced.
func (s Scope) WithSubtype(subtype string) Scope {
	return Scope{ObjectType: s.ObjectType, Subtype: normalizeName(subtype)}
}

// Matches reports whether an entity registered under s answers a query for
// the specific scope q: exact subtype or global registration.
func (s Scope) Matches(q Scope) bool {
	if s.ObjectType != q.ObjectType {
		return false
	}
	return s.Subtype == q.Subtype || s.Global()
}

func (s Scope) String() string {
	if s.Global() {
		return s.ObjectType + "/*"
	}
	return s.ObjectType + "/" + s.Subtype
}

func normalizeName(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// NormalizeID trims an entity id. Ids keep their case.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}
