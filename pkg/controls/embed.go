package controls

import (
	"embed"
	"io/fs"
	"sync"

	rendertemplate "github.com/goliatone/go-formfields/pkg/render/template"
	"github.com/goliatone/go-formfields/pkg/render/template/gotemplate"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the built-in control templates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

var (
	defaultEngineOnce sync.Once
	defaultEngine     rendertemplate.TemplateRenderer
	defaultEngineErr  error
)

// DefaultTemplates returns the shared engine loaded with the built-in
// templates.
func DefaultTemplates() (rendertemplate.TemplateRenderer, error) {
	defaultEngineOnce.Do(func() {
		defaultEngine, defaultEngineErr = NewTemplates()
	})
	return defaultEngine, defaultEngineErr
}

// NewTemplates builds an engine from the built-in templates plus any extra
// options (globals, filters).
func NewTemplates(opts ...gotemplate.Option) (rendertemplate.TemplateRenderer, error) {
	options := append([]gotemplate.Option{
		gotemplate.WithFS(TemplatesFS()),
		gotemplate.WithExtension(".tmpl"),
	}, opts...)
	return gotemplate.New(options...)
}
