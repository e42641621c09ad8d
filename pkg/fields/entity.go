package fields

// DefaultPriority orders entities that do not declare one.
const DefaultPriority = 10

// Entity is implemented by every registered object.
type Entity interface {
	ID() string
	Kind() Kind
	Scope() Scope
	Priority() int
}

// Gated entities carry a capability requirement and an optional visibility
// rule evaluated per request.
type Gated interface {
	Entity
	Capability() string
	VisibleRule() string
}

// Parented entities belong to a container.
type Parented interface {
	Entity
	ParentID() string
}
