// Package formfields wires the admin field registry, the form view and the
// built-in renderers together for callers that want one import.
//
// Typical setup:
//
//	reg := formfields.NewRegistry()
//	set, err := formfields.LoadDefinitions("definitions")
//	if err != nil {
//		return err
//	}
//	if err := set.Apply(reg); err != nil {
//		return err
//	}
//	html, err := formfields.NewForm(reg, "settings", "general").Render(ctx, forms.Request{
//		Principal: fields.Superuser,
//	})
package formfields

import (
	"github.com/goliatone/go-formfields/pkg/definitions"
	"github.com/goliatone/go-formfields/pkg/fields"
	"github.com/goliatone/go-formfields/pkg/forms"
	"github.com/goliatone/go-formfields/pkg/registry"
	"github.com/goliatone/go-formfields/pkg/render"
)

// Scope aliases fields.Scope so callers can register entities without
// importing the fields package.
type Scope = fields.Scope

// Request aliases forms.Request.
type Request = forms.Request

// SaveRequest aliases forms.SaveRequest.
type SaveRequest = forms.SaveRequest

// RenderOptions aliases render.RenderOptions.
type RenderOptions = render.RenderOptions

// NewScope builds a normalised scope. An empty subtype is the global scope of
// the object type.
func NewScope(objectType, subtype string) Scope {
	return fields.NewScope(objectType, subtype)
}

// NewRegistry exposes the registry constructor from the top-level module.
func NewRegistry(options ...registry.Option) *registry.Registry {
	return registry.New(options...)
}

// NewForm binds a screen of reg to the built-in renderers.
func NewForm(reg *registry.Registry, objectType, screenID string, options ...forms.Option) *forms.Form {
	return forms.New(reg, objectType, screenID, options...)
}

// LoadDefinitions reads every definition file under dir.
func LoadDefinitions(dir string) (*definitions.Set, error) {
	return definitions.LoadDir(dir)
}
