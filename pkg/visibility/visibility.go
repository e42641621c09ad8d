// Package visibility defines the predicate contract used to gate screens,
// sections and controls.
package visibility

// Evaluator determines whether an entity should be visible based on a rule
// string and the request context.
type Evaluator interface {
	Eval(entityID, rule string, ctx Context) (bool, error)
}

// Checker answers capability questions for the current principal.
type Checker interface {
	Can(capability string) bool
}

// Context provides inputs to an Evaluator. Values holds the current field
// values of the item being edited, Capabilities the acting principal, and
// Extras arbitrary caller data such as feature flags.
type Context struct {
	ObjectType   string
	Subtype      string
	ItemID       string
	Values       map[string]any
	Capabilities Checker
	Extras       map[string]any
}

// Can reports whether the context principal holds capability. A context
// without a principal grants nothing.
func (c Context) Can(capability string) bool {
	if c.Capabilities == nil {
		return false
	}
	return c.Capabilities.Can(capability)
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(entityID, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(entityID, rule string, ctx Context) (bool, error) {
	return fn(entityID, rule, ctx)
}
