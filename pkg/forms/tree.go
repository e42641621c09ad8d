package forms

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formfields/pkg/fields"
	"github.com/goliatone/go-formfields/pkg/visibility"
)

// node is one visible control with its resolved field.
type node struct {
	control *fields.Control
	field   *fields.Field
}

type sectionNode struct {
	section *fields.Container
	nodes   []node
}

type tree struct {
	screen   *fields.Container
	sections []sectionNode
	values   map[string]any
}

// resolve walks screen, sections and controls for scope. Capability checks
// run first; values are then loaded once per field so visibility rules can
// reference them; finally the rules prune the tree.
func (f *Form) resolve(ctx context.Context, scope fields.Scope, itemID string, principal fields.Principal) (*tree, error) {
	if f.initErr != nil {
		return nil, f.initErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	screen, ok := f.registry.Screen(scope, f.screenID)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrScreenNotFound, scope, f.screenID)
	}
	if principal == nil {
		principal = fields.Anonymous
	}

	out := &tree{screen: screen, values: make(map[string]any)}
	if !principal.Can(screen.Capability()) {
		return out, nil
	}

	var candidates []sectionNode
	for _, section := range f.registry.Sections(scope, screen.ID()) {
		if !principal.Can(section.Capability()) {
			continue
		}
		entry := sectionNode{section: section}
		for _, control := range f.registry.Controls(scope, section.ID()) {
			if !principal.Can(control.Capability()) {
				continue
			}
			field, ok := control.FieldIn(scope)
			if !ok {
				f.logger.Warn("control field not registered",
					zap.String("control", control.ID()),
					zap.String("field", control.FieldID()),
					zap.String("scope", scope.String()),
				)
				continue
			}
			if !principal.Can(field.Capability()) {
				continue
			}
			entry.nodes = append(entry.nodes, node{control: control, field: field})
		}
		candidates = append(candidates, entry)
	}

	for _, entry := range candidates {
		for _, n := range entry.nodes {
			if _, loaded := out.values[n.field.ID()]; loaded {
				continue
			}
			value, err := n.field.Value(ctx, itemID)
			if err != nil {
				return nil, fmt.Errorf("forms: load %s: %w", n.field.ID(), err)
			}
			out.values[n.field.ID()] = value
		}
	}

	vctx := visibility.Context{
		ObjectType:   scope.ObjectType,
		Subtype:      scope.Subtype,
		ItemID:       itemID,
		Values:       out.values,
		Capabilities: principal,
	}
	if !f.visible(screen.ID(), screen.VisibleRule(), vctx) {
		return out, nil
	}
	for _, entry := range candidates {
		if !f.visible(entry.section.ID(), entry.section.VisibleRule(), vctx) {
			continue
		}
		kept := entry.nodes[:0:0]
		for _, n := range entry.nodes {
			if f.visible(n.control.ID(), n.control.VisibleRule(), vctx) {
				kept = append(kept, n)
			}
		}
		entry.nodes = kept
		out.sections = append(out.sections, entry)
	}
	return out, nil
}

// visible evaluates rule; evaluation errors deny and are logged.
func (f *Form) visible(id, rule string, ctx visibility.Context) bool {
	if rule == "" {
		return true
	}
	ok, err := f.evaluator.Eval(id, rule, ctx)
	if err != nil {
		f.logger.Warn("visibility rule denied",
			zap.String("entity", id),
			zap.String("rule", rule),
			zap.Error(err),
		)
		return false
	}
	return ok
}
