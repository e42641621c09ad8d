// Package jsonview renders a form view as a JSON document. Client-side
// templates (the media and repeater runtimes, SPA admin screens) hydrate from
// it instead of parsing markup.
package jsonview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-formfields/pkg/render"
	theme "github.com/goliatone/go-theme"
)

// ContentType is the MIME type of rendered documents.
const ContentType = "application/json; charset=utf-8"

// Document is the payload written by Render.
type Document struct {
	Form        render.FormView `json:"form"`
	Action      string          `json:"action,omitempty"`
	Method      string          `json:"method"`
	SubmitLabel string          `json:"submit_label,omitempty"`
	Hidden      []Hidden        `json:"hidden,omitempty"`
	Errors      []string        `json:"errors,omitempty"`
	Theme       *Theme          `json:"theme,omitempty"`
}

// Hidden mirrors render.HiddenField with JSON tags.
type Hidden struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Theme is the client-facing subset of the go-theme renderer config.
type Theme struct {
	Name     string            `json:"name,omitempty"`
	Variant  string            `json:"variant,omitempty"`
	Partials map[string]string `json:"partials,omitempty"`
	Tokens   map[string]string `json:"tokens,omitempty"`
	CSSVars  map[string]string `json:"css_vars,omitempty"`
}

// Option customises the renderer configuration.
type Option func(*Renderer)

// WithIndent pretty prints documents.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// WithoutHTML strips pre-rendered control markup so clients render every
// control from its view data.
func WithoutHTML() Option {
	return func(r *Renderer) {
		r.stripHTML = true
	}
}

// Renderer implements render.Renderer for JSON output.
type Renderer struct {
	indent    string
	stripHTML bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a JSON renderer applying any provided options.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Name identifies the renderer inside the registry.
func (r *Renderer) Name() string {
	return "json"
}

// ContentType returns the MIME type for generated documents.
func (r *Renderer) ContentType() string {
	return ContentType
}

// Render encodes the document. HTML escaping stays on so the payload can be
// embedded in a script tag.
func (r *Renderer) Render(_ context.Context, form render.FormView, options render.RenderOptions) ([]byte, error) {
	doc := Build(form, options)
	if r.stripHTML {
		for i := range doc.Form.Sections {
			for j := range doc.Form.Sections[i].Controls {
				doc.Form.Sections[i].Controls[j].HTML = ""
			}
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if r.indent != "" {
		enc.SetIndent("", r.indent)
	}
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("jsonview renderer: encode form %q: %w", form.Screen, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Build assembles the document for form without encoding it. The form's
// sections are copied before the subset is applied.
func Build(form render.FormView, options render.RenderOptions) Document {
	sections := make([]render.SectionView, len(form.Sections))
	for i, section := range form.Sections {
		section.Controls = append([]render.ControlView(nil), section.Controls...)
		sections[i] = section
	}
	form.Sections = sections
	render.ApplySubset(&form, options.Subset)

	method := strings.ToLower(strings.TrimSpace(options.Method))
	if method == "" {
		method = "post"
	}

	doc := Document{
		Form:        form,
		Action:      strings.TrimSpace(options.Action),
		Method:      method,
		SubmitLabel: strings.TrimSpace(options.SubmitLabel),
		Errors:      options.Errors,
		Theme:       buildTheme(options.Theme),
	}

	for _, field := range render.HiddenInputs(form, options.Hidden...) {
		doc.Hidden = append(doc.Hidden, Hidden{Name: field.Name, Value: field.Value})
	}
	return doc
}

func buildTheme(cfg *theme.RendererConfig) *Theme {
	if cfg == nil {
		return nil
	}
	out := &Theme{
		Name:     strings.TrimSpace(cfg.Theme),
		Variant:  strings.TrimSpace(cfg.Variant),
		Partials: cloneStrings(cfg.Partials),
		Tokens:   cloneStrings(cfg.Tokens),
		CSSVars:  cloneStrings(cfg.CSSVars),
	}
	if out.Name == "" && out.Variant == "" && out.Partials == nil && out.Tokens == nil && out.CSSVars == nil {
		return nil
	}
	return out
}

func cloneStrings(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
