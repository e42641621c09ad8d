package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-formfields/pkg/render"
	rendertemplate "github.com/goliatone/go-formfields/pkg/render/template"
	gotemplate "github.com/goliatone/go-formfields/pkg/render/template/gotemplate"
)

// DefaultSubmitLabel is used when RenderOptions.SubmitLabel is empty.
const DefaultSubmitLabel = "Save Changes"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	defaultStyles    bool
	stylesheets      []string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithDefaultStyles inlines the bundled stylesheet ahead of the form.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.defaultStyles = true
	}
}

// WithStylesheet links an extra stylesheet ahead of the form.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if href = strings.TrimSpace(href); href != "" {
			cfg.stylesheets = append(cfg.stylesheets, href)
		}
	}
}

type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	inlineCSS   string
	stylesheets []string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	out := &Renderer{
		templates:   renderer,
		stylesheets: cfg.stylesheets,
	}
	if cfg.defaultStyles {
		out.inlineCSS = defaultStylesheet()
	}
	return out, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the form element for one screen. Table layouts put each
// control in a labelled row; stacked layouts use fieldsets.
func (r *Renderer) Render(_ context.Context, form render.FormView, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	form.Sections = append([]render.SectionView(nil), form.Sections...)
	render.ApplySubset(&form, options.Subset)
	form.Style = normaliseStyle(form.Style)

	method := strings.ToLower(strings.TrimSpace(options.Method))
	if method == "" {
		method = "post"
	}
	submit := strings.TrimSpace(options.SubmitLabel)
	if submit == "" {
		submit = DefaultSubmitLabel
	}

	hidden := render.HiddenInputs(form, options.Hidden...)

	stylesheets := uniqueStrings(form.Stylesheets, r.stylesheets)
	for i, href := range stylesheets {
		stylesheets[i] = assetURL(options.Theme, href)
	}

	partials := options.Partials()
	sectionTemplate := partialOr(partials, PartialSectionTable, "section-table")
	if form.Style == StyleStacked {
		sectionTemplate = partialOr(partials, PartialSectionStacked, "section-stacked")
	}

	data := map[string]any{
		"form":             form,
		"method":           method,
		"action":           strings.TrimSpace(options.Action),
		"submit_label":     submit,
		"show_submit":      !form.Empty(),
		"hidden":           hiddenData(hidden),
		"errors":           render.MergeFormErrors(form.Errors, options.Errors...),
		"classes":          chromeClasses(),
		"stylesheets":      stylesheets,
		"scripts":          scriptData(options.Theme, form.Scripts),
		"inline_css":       r.inlineCSS,
		"css_vars":         cssVars(options.Theme),
		"section_template": sectionTemplate,
	}

	result, err := r.templates.RenderTemplate(partialOr(partials, PartialForm, "form"), data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}
