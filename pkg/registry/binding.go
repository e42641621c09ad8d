package registry

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formfields/pkg/controls"
	"github.com/goliatone/go-formfields/pkg/fields"
)

// binding resolves a control's field through the registry at call time, so
// controls never hold their field directly.
type binding struct {
	r *Registry
}

var _ fields.ControlBinding = binding{}

func (b binding) Field(c *fields.Control, scope fields.Scope) (*fields.Field, bool) {
	if scope.ObjectType == "" {
		scope = c.Scope()
	}
	return b.r.Field(scope, c.FieldID())
}

func (b binding) Content(ctx context.Context, c *fields.Control, scope fields.Scope, itemID string) (string, error) {
	field, ok := b.Field(c, scope)
	if !ok {
		return "", fmt.Errorf("%w: control %q field %q", ErrFieldNotFound, c.ID(), c.FieldID())
	}
	value, err := field.Value(ctx, itemID)
	if err != nil {
		return "", fmt.Errorf("registry: control %q: %w", c.ID(), err)
	}
	renderer, err := b.r.ControlRenderer()
	if err != nil {
		return "", err
	}
	return renderer.Content(ctx, controls.ViewInput{Control: c, Field: field, Value: value})
}
