// Package fields holds the entity model shared by the registry, controls and
// forms: screens and sections (containers), fields that own a data store, and
// controls that bind a field to a presentation variant.
//
// Every entity is scoped by an object type and an optional subtype. An empty
// subtype means the entity applies to every subtype of its object type.
package fields
