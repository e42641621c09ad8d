// Package gotemplate implements the template seam with pongo2. Data handed to
// templates is normalised through encoding/json, so struct views are
// addressed by their json tags and maps keep their keys.
package gotemplate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formfields/pkg/render/template"
)

// FilterFunc is a simplified pongo2 filter: it receives the piped value and
// the optional parameter as plain Go values.
type FilterFunc func(input any, param any) (any, error)

// Option configures an Engine.
type Option func(*Engine)

// WithFS loads templates from files.
func WithFS(files fs.FS) Option {
	return func(e *Engine) {
		e.files = files
	}
}

// WithExtension sets the extension appended to names without one. Defaults
// to ".tmpl".
func WithExtension(ext string) Option {
	return func(e *Engine) {
		ext = strings.TrimSpace(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		e.ext = ext
	}
}

// WithGlobals exposes values, including functions, to every template.
func WithGlobals(globals map[string]any) Option {
	return func(e *Engine) {
		for name, value := range globals {
			e.globals[name] = value
		}
	}
}

// WithFilter registers a filter. pongo2 filters are process wide, so a name
// can only be claimed once.
func WithFilter(name string, fn FilterFunc) Option {
	return func(e *Engine) {
		e.filters[name] = fn
	}
}

// Engine renders pongo2 templates loaded from an fs.FS.
type Engine struct {
	files   fs.FS
	ext     string
	globals pongo2.Context
	filters map[string]FilterFunc

	set   *pongo2.TemplateSet
	cache sync.Map // name -> *pongo2.Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

var builtinsOnce sync.Once

// New builds an engine. A template filesystem is required.
func New(options ...Option) (*Engine, error) {
	e := &Engine{
		ext:     ".tmpl",
		globals: pongo2.Context{},
		filters: map[string]FilterFunc{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if e.files == nil {
		return nil, errors.New("gotemplate: a template filesystem is required")
	}

	builtinsOnce.Do(registerBuiltins)
	for name, fn := range e.filters {
		if err := registerFilter(name, fn); err != nil {
			return nil, err
		}
	}

	globals, err := normalize(map[string]any(e.globals))
	if err != nil {
		return nil, fmt.Errorf("gotemplate: globals: %w", err)
	}
	e.set = pongo2.NewSet("formfields", pongo2.NewFSLoader(e.files))
	e.set.Globals = globals
	return e, nil
}

// RenderTemplate renders the named template file.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	tpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	return execute(tpl, data, out)
}

// RenderString compiles content and renders it. The compiled template is not
// cached.
func (e *Engine) RenderString(content string, data any, out ...io.Writer) (string, error) {
	tpl, err := e.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("gotemplate: compile string: %w", err)
	}
	return execute(tpl, data, out)
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if path.Ext(name) == "" {
		name += e.ext
	}
	if cached, ok := e.cache.Load(name); ok {
		return cached.(*pongo2.Template), nil
	}
	tpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %q: %w", name, err)
	}
	actual, _ := e.cache.LoadOrStore(name, tpl)
	return actual.(*pongo2.Template), nil
}

func execute(tpl *pongo2.Template, data any, out []io.Writer) (string, error) {
	ctx, err := normalize(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: template data: %w", err)
	}
	rendered, err := tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute: %w", err)
	}
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", fmt.Errorf("gotemplate: write output: %w", err)
		}
	}
	return rendered, nil
}

// normalize turns data into a pongo2 context. Top level functions pass
// through untouched; everything else goes through a JSON round trip.
func normalize(data any) (pongo2.Context, error) {
	ctx := pongo2.Context{}
	var top map[string]any
	switch v := data.(type) {
	case nil:
		return ctx, nil
	case pongo2.Context:
		top = v
	case map[string]any:
		top = v
	default:
		if err := roundTrip(v, &top); err != nil {
			return nil, err
		}
	}
	for key, value := range top {
		if value != nil && reflect.TypeOf(value).Kind() == reflect.Func {
			ctx[key] = value
			continue
		}
		var plain any
		if err := roundTrip(value, &plain); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		ctx[key] = plain
	}
	return ctx, nil
}

func roundTrip(in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func registerFilter(name string, fn FilterFunc) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("gotemplate: filter needs a name and a function")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already registered", name)
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		result, err := fn(in.Interface(), param.Interface())
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

func registerBuiltins() {
	if !pongo2.FilterExists("tojson") {
		// json.Marshal escapes <, > and &, so the output is safe inside <script>
		_ = pongo2.RegisterFilter("tojson", func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			raw, err := json.Marshal(in.Interface())
			if err != nil {
				return nil, &pongo2.Error{Sender: "filter:tojson", OrigError: err}
			}
			return pongo2.AsSafeValue(string(raw)), nil
		})
	}
}
