package forms

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formfields/components/choices"
	"github.com/goliatone/go-formfields/pkg/controls"
	"github.com/goliatone/go-formfields/pkg/fields"
	"github.com/goliatone/go-formfields/pkg/registry"
	"github.com/goliatone/go-formfields/pkg/render"
	"github.com/goliatone/go-formfields/pkg/renderers/jsonview"
	"github.com/goliatone/go-formfields/pkg/renderers/vanilla"
	"github.com/goliatone/go-formfields/pkg/visibility"
	"github.com/goliatone/go-formfields/pkg/visibility/expr"
)

const defaultRendererName = "vanilla"

// ErrScreenNotFound is returned when the bound screen is not registered for
// the requested scope.
var ErrScreenNotFound = errors.New("forms: screen not found")

// Option customises a Form.
type Option func(*Form)

// WithRenderers injects a renderer registry.
func WithRenderers(renderers *render.Registry) Option {
	return func(f *Form) {
		f.renderers = renderers
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(f *Form) {
		f.defaultRenderer = strings.TrimSpace(name)
	}
}

// WithEvaluator replaces the visibility rule evaluator.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(f *Form) {
		f.evaluator = evaluator
	}
}

// WithChoices resolves control datasources against reg. A dedicated control
// renderer sharing the registry's variants is built for the form.
func WithChoices(reg *choices.Registry) Option {
	return func(f *Form) {
		f.choices = reg
	}
}

// WithControlRenderer overrides the control renderer taken from the
// registry.
func WithControlRenderer(renderer *controls.Renderer) Option {
	return func(f *Form) {
		f.controls = renderer
	}
}

// WithLogger sets the logger. Defaults to the registry logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Form renders and saves one screen of one object type.
type Form struct {
	registry        *registry.Registry
	objectType      string
	screenID        string
	renderers       *render.Registry
	defaultRenderer string
	evaluator       visibility.Evaluator
	choices         *choices.Registry
	controls        *controls.Renderer
	logger          *zap.Logger
	theme           *themeDefaults
	initErr         error
}

// New binds screenID of objectType. Missing collaborators fall back to the
// built-ins: vanilla and json renderers, the expression evaluator and the
// registry's control renderer.
func New(reg *registry.Registry, objectType, screenID string, options ...Option) *Form {
	f := &Form{
		registry:        reg,
		objectType:      strings.ToLower(strings.TrimSpace(objectType)),
		screenID:        fields.NormalizeID(screenID),
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	f.applyDefaults()
	return f
}

// ObjectType reports the bound object type.
func (f *Form) ObjectType() string { return f.objectType }

// ScreenID reports the bound screen id.
func (f *Form) ScreenID() string { return f.screenID }

func (f *Form) applyDefaults() {
	if f.registry == nil {
		f.initErr = errors.New("forms: registry is required")
		return
	}
	if f.logger == nil {
		f.logger = f.registry.Logger()
	}
	if f.evaluator == nil {
		f.evaluator = expr.New()
	}
	if f.controls == nil {
		var err error
		if f.choices != nil {
			f.controls, err = controls.NewRenderer(
				controls.WithTypes(f.registry.ControlTypes()),
				controls.WithChoices(f.choices),
			)
		} else {
			f.controls, err = f.registry.ControlRenderer()
		}
		if err != nil {
			f.initErr = fmt.Errorf("forms: control renderer: %w", err)
			return
		}
	}
	if f.renderers == nil {
		f.renderers = render.NewRegistry()
		html, err := vanilla.New()
		if err != nil {
			f.initErr = fmt.Errorf("forms: default renderer: %w", err)
			return
		}
		f.renderers.MustRegister(html)
		f.renderers.MustRegister(jsonview.New())
	}
}

// Renderer resolves a renderer by name. An empty name picks the configured
// default and then the first registered renderer.
func (f *Form) Renderer(name string) (render.Renderer, error) {
	if f.initErr != nil {
		return nil, f.initErr
	}

	target := name
	if target == "" {
		target = f.defaultRenderer
	}

	if target != "" {
		renderer, err := f.renderers.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("forms: renderer %q: %w", name, err)
		}
	}

	renderer, err := f.renderers.Default()
	if err != nil {
		return nil, fmt.Errorf("forms: %w", err)
	}
	return renderer, nil
}
