package controls

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/goliatone/go-formfields/components/choices"
	"github.com/goliatone/go-formfields/pkg/fields"
	rendertemplate "github.com/goliatone/go-formfields/pkg/render/template"
)

// ErrUnknownType is returned when a control resolves to an unregistered
// variant.
var ErrUnknownType = errors.New("controls: unknown control type")

// RenderData carries the collaborators a RenderFunc may need.
type RenderData struct {
	Template    rendertemplate.TemplateRenderer
	Partials    map[string]string
	Attachments AttachmentFunc
}

// Renderer turns controls into views and markup, and submitted values back
// into raw field values.
type Renderer struct {
	types        *Registry
	templates    rendertemplate.TemplateRenderer
	partials     map[string]string
	choices      *choices.Registry
	resolver     *Resolver
	attachments  AttachmentFunc
	endpointBase string
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithTypes overrides the variant registry.
func WithTypes(types *Registry) Option {
	return func(r *Renderer) {
		if types != nil {
			r.types = types
		}
	}
}

// WithTemplates overrides the template engine.
func WithTemplates(engine rendertemplate.TemplateRenderer) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.templates = engine
		}
	}
}

// WithPartials maps partial keys ("controls.input") to template names.
func WithPartials(partials map[string]string) Option {
	return func(r *Renderer) {
		r.partials = maps.Clone(partials)
	}
}

// WithChoices enables datasource lookups.
func WithChoices(reg *choices.Registry) Option {
	return func(r *Renderer) {
		r.choices = reg
	}
}

// WithResolver overrides the type resolver.
func WithResolver(resolver *Resolver) Option {
	return func(r *Renderer) {
		if resolver != nil {
			r.resolver = resolver
		}
	}
}

// WithAttachments installs the media attachment lookup.
func WithAttachments(fn AttachmentFunc) Option {
	return func(r *Renderer) {
		r.attachments = fn
	}
}

// WithEndpointBase sets the mount path used for async datasource endpoints.
func WithEndpointBase(base string) Option {
	return func(r *Renderer) {
		r.endpointBase = strings.TrimSpace(base)
	}
}

// NewRenderer builds a renderer with the built-in variants and templates
// unless overridden.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.types == nil {
		r.types = NewDefaultRegistry()
	}
	if r.resolver == nil {
		r.resolver = NewResolver()
	}
	if r.templates == nil {
		engine, err := DefaultTemplates()
		if err != nil {
			return nil, fmt.Errorf("controls: load templates: %w", err)
		}
		r.templates = engine
	}
	return r, nil
}

// Types exposes the variant registry.
func (r *Renderer) Types() *Registry { return r.types }

// ResolveType returns the control's variant. An explicit control type is
// used as is; otherwise the field type (when registered) and then the field
// traits decide.
func (r *Renderer) ResolveType(control *fields.Control, field *fields.Field) string {
	cfg := control.Config()
	if explicit := normalize(cfg.Type); explicit != "" {
		return explicit
	}
	traits := Traits{
		HasChoices: len(cfg.Choices) > 0 || cfg.Datasource != "",
		Multiple:   optionBool(cfg.Options, "multiple"),
		Options:    cfg.Options,
	}
	if field != nil {
		traits.Hint = field.Type()
		traits.DataType = field.DataType()
	}
	return r.resolver.Resolve(traits, r.types.Has)
}

// ViewInput is what View needs to describe one control.
type ViewInput struct {
	Control *fields.Control
	Field   *fields.Field
	Value   any
	Errors  []string
}

// View builds the render-ready view of a control.
func (r *Renderer) View(ctx context.Context, in ViewInput) (View, error) {
	if in.Control == nil {
		return View{}, errors.New("controls: control is required")
	}
	cfg := in.Control.Config()
	controlType := r.ResolveType(in.Control, in.Field)
	descriptor, ok := r.types.Descriptor(controlType)
	if !ok {
		return View{}, fmt.Errorf("%w %q", ErrUnknownType, controlType)
	}

	view := View{
		ID:          in.Control.ID(),
		Field:       in.Control.FieldID(),
		Type:        controlType,
		Name:        in.Control.FieldID(),
		InputID:     "ff-" + in.Control.ID(),
		Label:       cfg.Label,
		Description: cfg.Description,
		Placeholder: cfg.Placeholder,
		Multiple:    descriptor.Multiple || optionBool(cfg.Options, "multiple"),
		Attrs:       maps.Clone(cfg.Attrs),
		Errors:      append([]string(nil), in.Errors...),
		Options:     maps.Clone(cfg.Options),
	}
	if in.Field != nil {
		if view.Label == "" {
			view.Label = in.Field.Label()
		}
		if view.Description == "" {
			view.Description = in.Field.Description()
		}
		view.Required = in.Field.Rules().Required
	}
	if view.Label == "" {
		view.Label = Humanize(view.Field)
	}
	view.InputName = view.Name
	if view.Multiple {
		view.InputName += "[]"
	}
	view.SetValue(in.Value)

	options := append([]choices.Option(nil), cfg.Choices...)
	if cfg.Datasource != "" {
		if optionBool(cfg.Options, "async") {
			if view.Attrs == nil {
				view.Attrs = map[string]string{}
			}
			for key, value := range choices.NewEndpoint(r.endpointBase, cfg.Datasource).Attrs() {
				view.Attrs[key] = value
			}
		} else if r.choices != nil {
			resolved, err := r.choices.Resolve(ctx, cfg.Datasource)
			if err != nil {
				return View{}, fmt.Errorf("controls: control %q: %w", view.ID, err)
			}
			options = append(options, resolved...)
		}
	}
	view.SetChoices(options)
	return view, nil
}

// Render renders a view with its variant.
func (r *Renderer) Render(view View) (string, error) {
	descriptor, ok := r.types.Descriptor(view.Type)
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownType, view.Type)
	}
	return descriptor.Render(view, RenderData{
		Template:    r.templates,
		Partials:    r.partials,
		Attachments: r.attachments,
	})
}

// RenderWithPartials renders a view with per-request partial overrides
// layered over the renderer's own.
func (r *Renderer) RenderWithPartials(view View, partials map[string]string) (string, error) {
	descriptor, ok := r.types.Descriptor(view.Type)
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownType, view.Type)
	}
	merged := r.partials
	if len(partials) > 0 {
		merged = maps.Clone(r.partials)
		if merged == nil {
			merged = make(map[string]string, len(partials))
		}
		maps.Copy(merged, partials)
	}
	return descriptor.Render(view, RenderData{
		Template:    r.templates,
		Partials:    merged,
		Attachments: r.attachments,
	})
}

// Content builds and renders the view in one step.
func (r *Renderer) Content(ctx context.Context, in ViewInput) (string, error) {
	view, err := r.View(ctx, in)
	if err != nil {
		return "", err
	}
	return r.Render(view)
}

// Parse converts submitted values for a control variant.
func (r *Renderer) Parse(controlType string, values []string) (any, bool, error) {
	descriptor, ok := r.types.Descriptor(controlType)
	if !ok {
		return nil, false, fmt.Errorf("%w %q", ErrUnknownType, controlType)
	}
	return descriptor.Parse(values)
}

// Assets aggregates stylesheet and script dependencies for the variants.
func (r *Renderer) Assets(types []string) ([]string, []Script) {
	return r.types.Assets(types)
}
