package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfields/pkg/render"
)

type namedRenderer string

func (n namedRenderer) Name() string        { return string(n) }
func (n namedRenderer) ContentType() string { return "text/plain" }
func (n namedRenderer) Render(context.Context, render.FormView, render.RenderOptions) ([]byte, error) {
	return []byte(n), nil
}

func TestRegistry_DefaultIsFirstRegistered(t *testing.T) {
	reg := render.NewRegistry()
	if _, err := reg.Default(); !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound on empty registry, got %v", err)
	}

	reg.MustRegister(namedRenderer("vanilla"))
	reg.MustRegister(namedRenderer("json"))

	def, err := reg.Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if def.Name() != "vanilla" {
		t.Fatalf("expected vanilla as default, got %q", def.Name())
	}
	if diff := cmp.Diff([]string{"json", "vanilla"}, reg.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if !reg.Has(" json ") {
		t.Fatalf("expected Has to trim names")
	}
}

func TestRegistry_RejectsDuplicatesAndBlankNames(t *testing.T) {
	reg := render.NewRegistry()
	reg.MustRegister(namedRenderer("json"))

	if err := reg.Register(namedRenderer("json")); !errors.Is(err, render.ErrDuplicateRenderer) {
		t.Fatalf("expected ErrDuplicateRenderer, got %v", err)
	}
	if err := reg.Register(namedRenderer("  ")); err == nil {
		t.Fatalf("expected error for blank name")
	}
	if err := reg.Register(nil); err == nil {
		t.Fatalf("expected error for nil renderer")
	}
	if _, err := reg.Get("pdf"); !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
}
