package forms

import (
	"fmt"
	"maps"
	"path"
	"strings"

	theme "github.com/goliatone/go-theme"
)

type themeDefaults struct {
	selector theme.ThemeSelector
	name     string
	variant  string
	partials map[string]string
}

// WithThemeSelector resolves the theme through selector for every request
// that does not carry a resolved Options.Theme. name and variant are used
// when the request leaves ThemeName or ThemeVariant empty.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(f *Form) {
		if selector == nil {
			return
		}
		if f.theme == nil {
			f.theme = &themeDefaults{}
		}
		f.theme.selector = selector
		f.theme.name = strings.TrimSpace(name)
		f.theme.variant = strings.TrimSpace(variant)
	}
}

// WithThemeFallbacks sets partials used when the selected theme does not
// override them, e.g. {"controls.input": "input.tmpl"}.
func WithThemeFallbacks(partials map[string]string) Option {
	return func(f *Form) {
		if f.theme == nil {
			f.theme = &themeDefaults{}
		}
		f.theme.partials = maps.Clone(partials)
	}
}

// applyTheme fills req.Options.Theme from the selector.
func (f *Form) applyTheme(req *Request) error {
	if req.Options.Theme != nil || f.theme == nil || f.theme.selector == nil {
		return nil
	}
	name := firstNonEmpty(req.ThemeName, f.theme.name)
	variant := firstNonEmpty(req.ThemeVariant, f.theme.variant)
	selection, err := f.theme.selector.Select(name, variant)
	if err != nil {
		return fmt.Errorf("forms: select theme %q: %w", name, err)
	}
	if selection == nil {
		return nil
	}
	req.Options.Theme = rendererConfig(selection, f.theme.partials)
	return nil
}

// rendererConfig flattens a selection: variant tokens, templates and asset
// files override the manifest's. Tokens double as CSS variables.
func rendererConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: maps.Clone(fallbacks),
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
	}
	if cfg.Partials == nil {
		cfg.Partials = map[string]string{}
	}

	prefix := ""
	files := map[string]string{}
	if manifest := selection.Manifest; manifest != nil {
		maps.Copy(cfg.Tokens, manifest.Tokens)
		maps.Copy(cfg.Partials, manifest.Templates)
		prefix = manifest.Assets.Prefix
		maps.Copy(files, manifest.Assets.Files)
		if variant, ok := manifest.Variants[selection.Variant]; ok {
			maps.Copy(cfg.Tokens, variant.Tokens)
			maps.Copy(cfg.Partials, variant.Templates)
			if variant.Assets.Prefix != "" {
				prefix = variant.Assets.Prefix
			}
			maps.Copy(files, variant.Assets.Files)
		}
	}
	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	cfg.AssetURL = func(key string) string {
		if file, ok := files[key]; ok {
			key = file
		}
		if prefix == "" || key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "://") {
			return key
		}
		return path.Join(prefix, key)
	}
	return cfg
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
