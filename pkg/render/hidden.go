package render

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Names of the hidden inputs that carry the edited item.
const (
	ItemFieldName    = "ff_item_id"
	SubtypeFieldName = "ff_subtype"
)

// HiddenField is a hidden input emitted next to the visible controls.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden builds a HiddenField, formatting value with fmt.Sprint.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// HiddenInputs returns the inputs a renderer should emit for form: the item
// id and subtype when set, followed by extra. Blank names are dropped, the
// last value for a name wins and the result is sorted by name.
func HiddenInputs(form FormView, extra ...HiddenField) []HiddenField {
	var all []HiddenField
	if form.ItemID != "" {
		all = append(all, Hidden(ItemFieldName, form.ItemID))
	}
	if form.Subtype != "" {
		all = append(all, Hidden(SubtypeFieldName, form.Subtype))
	}
	all = append(all, extra...)

	index := make(map[string]int, len(all))
	out := make([]HiddenField, 0, len(all))
	for _, field := range all {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		if at, seen := index[name]; seen {
			out[at].Value = field.Value
			continue
		}
		index[name] = len(out)
		out = append(out, HiddenField{Name: name, Value: field.Value})
	}
	if len(out) == 0 {
		return nil
	}
	slices.SortFunc(out, func(a, b HiddenField) int { return cmp.Compare(a.Name, b.Name) })
	return out
}
