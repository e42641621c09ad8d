package render

import (
	theme "github.com/goliatone/go-theme"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without changing the form view.
type RenderOptions struct {
	// Action is the form submission URL. Empty posts back to the current page.
	Action string
	// Method defaults to POST.
	Method string
	// SubmitLabel overrides the submit button text. Renderers omit the button
	// when the form has no controls.
	SubmitLabel string
	// Hidden fields are emitted before the sections.
	Hidden []HiddenField
	// Errors are form-level messages shown above the sections. Field errors
	// travel on the control views.
	Errors []string
	// Theme carries partial overrides, tokens and CSS variables resolved by
	// go-theme.
	Theme *theme.RendererConfig
	// Subset restricts rendering to some sections or fields.
	Subset Subset
}

// Partials returns the theme partial overrides, if any.
func (o RenderOptions) Partials() map[string]string {
	if o.Theme == nil {
		return nil
	}
	return o.Theme.Partials
}
