package render

import (
	"github.com/goliatone/go-formfields/pkg/controls"
)

// FormView is the render-ready description of one screen for one item.
type FormView struct {
	Screen      string        `json:"screen"`
	ObjectType  string        `json:"object_type"`
	Subtype     string        `json:"subtype,omitempty"`
	ItemID      string        `json:"item_id,omitempty"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Style       string        `json:"style"`
	Sections    []SectionView `json:"sections"`
	Errors      []string      `json:"errors,omitempty"`
	// Types lists the control variants used, in first-use order, so
	// renderers can pull their assets.
	Types       []string          `json:"types,omitempty"`
	Stylesheets []string          `json:"stylesheets,omitempty"`
	Scripts     []controls.Script `json:"scripts,omitempty"`
}

// SectionView is one visible section.
type SectionView struct {
	ID          string        `json:"id"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Controls    []ControlView `json:"controls"`
}

// ControlView pairs a control view with its rendered markup.
type ControlView struct {
	controls.View
	HTML string `json:"html,omitempty"`
}

// Empty reports whether no control is visible.
func (f FormView) Empty() bool {
	for _, section := range f.Sections {
		if len(section.Controls) > 0 {
			return false
		}
	}
	return true
}

// FieldIDs lists the field ids bound by visible controls, deduplicated in
// render order.
func (f FormView) FieldIDs() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, section := range f.Sections {
		for _, control := range section.Controls {
			if _, ok := seen[control.Field]; ok {
				continue
			}
			seen[control.Field] = struct{}{}
			out = append(out, control.Field)
		}
	}
	return out
}
