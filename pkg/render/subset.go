package render

import "strings"

// Subset restricts a form view to some sections or fields. Tokens are
// compared case-insensitively. An empty subset keeps everything.
type Subset struct {
	Sections []string
	Fields   []string
}

// Empty reports whether the subset filters nothing.
func (s Subset) Empty() bool {
	return len(normaliseTokens(s.Sections)) == 0 && len(normaliseTokens(s.Fields)) == 0
}

// Keeps reports whether a control bound to fieldID in sectionID survives the
// subset. A listed section keeps all its controls.
func (s Subset) Keeps(sectionID, fieldID string) bool {
	if s.Empty() {
		return true
	}
	if _, ok := normaliseTokens(s.Sections)[strings.ToLower(sectionID)]; ok {
		return true
	}
	_, ok := normaliseTokens(s.Fields)[strings.ToLower(fieldID)]
	return ok
}

// ApplySubset prunes sections and controls that do not match subset. A
// section listed by id keeps all its controls; otherwise only controls bound
// to a listed field survive. Sections left without controls are dropped.
func ApplySubset(form *FormView, subset Subset) {
	if form == nil || subset.Empty() {
		return
	}

	kept := make([]SectionView, 0, len(form.Sections))
	for _, section := range form.Sections {
		controls := make([]ControlView, 0, len(section.Controls))
		for _, control := range section.Controls {
			if subset.Keeps(section.ID, control.Field) {
				controls = append(controls, control)
			}
		}
		if len(controls) == 0 {
			continue
		}
		section.Controls = controls
		kept = append(kept, section)
	}
	form.Sections = kept
}

func normaliseTokens(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		token := strings.ToLower(strings.TrimSpace(value))
		if token == "" {
			continue
		}
		out[token] = struct{}{}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
