package forms

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/goliatone/go-formfields/pkg/fields"
	"github.com/goliatone/go-formfields/pkg/render"
)

// SaveRequest carries one form submission.
type SaveRequest struct {
	ItemID    string
	Subtype   string
	Principal fields.Principal
	// Values are the posted form values. Multi-value controls post "id[]".
	Values url.Values
	// Subset limits the save to the controls a subset render showed, so
	// checkboxes that were never on the page are not cleared.
	Subset render.Subset
}

// SaveResult reports what a Save did.
type SaveResult struct {
	// Saved lists the field ids persisted, in form order.
	Saved []string `json:"saved"`
	// Errors maps field ids to validation messages. Fields with errors were
	// not persisted.
	Errors map[string][]string `json:"errors,omitempty"`
}

// Valid reports whether no field was rejected.
func (r SaveResult) Valid() bool {
	return len(r.Errors) == 0
}

func (r *SaveResult) addError(field, message string) {
	if r.Errors == nil {
		r.Errors = make(map[string][]string)
	}
	r.Errors[field] = append(r.Errors[field], message)
}

// Save walks the same tree View renders and stores each visible field once.
// Fields the submission does not mention are left untouched, except for
// variants where absence carries meaning (an unchecked checkbox saves false).
// Validation problems are collected per field; persistence errors abort and
// are returned with the partial result.
func (f *Form) Save(ctx context.Context, req SaveRequest) (SaveResult, error) {
	var result SaveResult
	scope := fields.NewScope(f.objectType, req.Subtype)
	t, err := f.resolve(ctx, scope, req.ItemID, req.Principal)
	if err != nil {
		return result, err
	}

	seen := make(map[string]struct{})
	for _, entry := range t.sections {
		for _, n := range entry.nodes {
			if !req.Subset.Keeps(entry.section.ID(), n.control.FieldID()) {
				continue
			}
			fieldID := n.field.ID()
			if _, done := seen[fieldID]; done {
				continue
			}
			if err := ctx.Err(); err != nil {
				return result, err
			}

			raw, _ := lookupValues(req.Values, fieldID)
			controlType := f.controls.ResolveType(n.control, n.field)
			parsed, ok, err := f.controls.Parse(controlType, raw)
			if err != nil {
				seen[fieldID] = struct{}{}
				result.addError(fieldID, err.Error())
				continue
			}
			if !ok {
				continue
			}
			seen[fieldID] = struct{}{}

			issues, err := n.field.Save(ctx, req.ItemID, parsed)
			if err != nil {
				return result, fmt.Errorf("forms: save %s: %w", fieldID, err)
			}
			if len(issues) > 0 {
				for _, issue := range issues {
					result.addError(fieldID, issue.Message)
				}
				continue
			}
			result.Saved = append(result.Saved, fieldID)
			f.logger.Info("field saved",
				zap.String("field", fieldID),
				zap.String("object_type", scope.ObjectType),
				zap.String("subtype", scope.Subtype),
				zap.String("item_id", req.ItemID),
			)
		}
	}
	return result, nil
}
