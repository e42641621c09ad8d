// Package registry keeps every screen, section, field and control registered
// for an admin interface, keyed by kind, object type, subtype and id.
//
// An empty subtype registers an entity for every subtype of its object type.
// Lookups for a specific subtype prefer an exact registration and fall back to
// the global one. Queries that need every subtype set Query.AllSubtypes
// explicitly.
package registry
