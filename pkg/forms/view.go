package forms

import (
	"context"
	"fmt"
	"net/url"

	"github.com/goliatone/go-formfields/pkg/controls"
	"github.com/goliatone/go-formfields/pkg/fields"
	"github.com/goliatone/go-formfields/pkg/render"
)

// Request describes one view or render call.
type Request struct {
	// ItemID identifies the edited item. Settings screens leave it empty.
	ItemID  string
	Subtype string
	// Principal gates capabilities. Nil means anonymous.
	Principal fields.Principal
	// Renderer names the renderer to use. If empty, the form falls back to
	// the configured default renderer.
	Renderer string
	// ThemeName and ThemeVariant override the selector defaults.
	ThemeName    string
	ThemeVariant string
	// Options carries per-request render instructions.
	Options render.RenderOptions
	// Errors attaches messages to fields, usually from a failed Save. Keys may
	// be field ids or error paths; keys naming no field become form level
	// messages.
	Errors map[string][]string
	// Submitted, when set, redisplays posted values instead of stored ones.
	Submitted url.Values
}

// View resolves the screen into a render-ready view.
func (f *Form) View(ctx context.Context, req Request) (render.FormView, error) {
	if err := f.applyTheme(&req); err != nil {
		return render.FormView{}, err
	}
	scope := fields.NewScope(f.objectType, req.Subtype)
	t, err := f.resolve(ctx, scope, req.ItemID, req.Principal)
	if err != nil {
		return render.FormView{}, err
	}

	title := t.screen.Title()
	if title == "" {
		title = controls.Humanize(t.screen.ID())
	}
	style := t.screen.Style()
	if style == "" {
		style = fields.StyleTable
	}

	form := render.FormView{
		Screen:      t.screen.ID(),
		ObjectType:  scope.ObjectType,
		Subtype:     scope.Subtype,
		ItemID:      req.ItemID,
		Title:       title,
		Description: t.screen.Description(),
		Style:       style,
	}

	var ids []string
	for _, entry := range t.sections {
		for _, n := range entry.nodes {
			ids = append(ids, n.field.ID())
		}
	}
	fieldErrors, formErrors := render.SplitErrors(ids, req.Errors)
	form.Errors = formErrors

	partials := req.Options.Partials()
	seenTypes := make(map[string]struct{})
	for _, entry := range t.sections {
		section := render.SectionView{
			ID:          entry.section.ID(),
			Title:       entry.section.Title(),
			Description: entry.section.Description(),
			Controls:    make([]render.ControlView, 0, len(entry.nodes)),
		}
		for _, n := range entry.nodes {
			value := t.values[n.field.ID()]
			if req.Submitted != nil {
				if parsed, ok := f.submitted(n, req.Submitted); ok {
					value = parsed
				}
			}

			view, err := f.controls.View(ctx, controls.ViewInput{
				Control: n.control,
				Field:   n.field,
				Value:   value,
				Errors:  fieldErrors[n.field.ID()],
			})
			if err != nil {
				return render.FormView{}, fmt.Errorf("forms: view %s: %w", n.control.ID(), err)
			}
			html, err := f.controls.RenderWithPartials(view, partials)
			if err != nil {
				return render.FormView{}, fmt.Errorf("forms: render %s: %w", n.control.ID(), err)
			}
			section.Controls = append(section.Controls, render.ControlView{View: view, HTML: html})

			if _, ok := seenTypes[view.Type]; !ok {
				seenTypes[view.Type] = struct{}{}
				form.Types = append(form.Types, view.Type)
			}
		}
		form.Sections = append(form.Sections, section)
	}

	form.Stylesheets, form.Scripts = f.controls.Assets(form.Types)
	return form, nil
}

// Render views the screen and hands it to the selected renderer.
func (f *Form) Render(ctx context.Context, req Request) ([]byte, error) {
	renderer, err := f.Renderer(req.Renderer)
	if err != nil {
		return nil, err
	}
	if err := f.applyTheme(&req); err != nil {
		return nil, err
	}
	form, err := f.View(ctx, req)
	if err != nil {
		return nil, err
	}
	output, err := renderer.Render(ctx, form, req.Options)
	if err != nil {
		return nil, fmt.Errorf("forms: render output: %w", err)
	}
	return output, nil
}

// submitted parses the posted value of a node. Variants that treat absence
// as a value (checkboxes) report it; parse failures fall back to the stored
// value.
func (f *Form) submitted(n node, values url.Values) (any, bool) {
	raw, _ := lookupValues(values, n.field.ID())
	parsed, ok, err := f.controls.Parse(f.controls.ResolveType(n.control, n.field), raw)
	if err != nil || !ok {
		return nil, false
	}
	return parsed, true
}

// lookupValues reads "id" then "id[]".
func lookupValues(values url.Values, id string) ([]string, bool) {
	if raw, ok := values[id]; ok {
		return raw, true
	}
	raw, ok := values[id+"[]"]
	return raw, ok
}
