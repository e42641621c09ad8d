package vanilla

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-formfields/pkg/controls"
	"github.com/goliatone/go-formfields/pkg/render"
	theme "github.com/goliatone/go-theme"
)

// Layout names accepted on FormView.Style.
const (
	StyleTable   = "table"
	StyleStacked = "stacked"
)

// Theme partial keys that replace the built-in form templates.
const (
	PartialForm           = "forms.form"
	PartialSectionTable   = "forms.section.table"
	PartialSectionStacked = "forms.section.stacked"
)

func normaliseStyle(style string) string {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case StyleStacked:
		return StyleStacked
	default:
		return StyleTable
	}
}

func partialOr(partials map[string]string, key, fallback string) string {
	name := strings.TrimSpace(partials[key])
	if name == "" {
		name = fallback
	}
	if path.Ext(name) == "" {
		name += ".tmpl"
	}
	return name
}

// cssVars renders theme CSS variables as an inline style attribute value in
// key order.
func cssVars(cfg *theme.RendererConfig) string {
	if cfg == nil || len(cfg.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cfg.CSSVars))
	for key := range cfg.CSSVars {
		if strings.TrimSpace(key) != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		name := strings.TrimSpace(key)
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s: %s;", name, strings.TrimSpace(cfg.CSSVars[key]))
	}
	return b.String()
}

func assetURL(cfg *theme.RendererConfig, href string) string {
	if cfg == nil || cfg.AssetURL == nil || href == "" {
		return href
	}
	if resolved := cfg.AssetURL(href); resolved != "" {
		return resolved
	}
	return href
}

func hiddenData(fields []render.HiddenField) []map[string]string {
	out := make([]map[string]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, map[string]string{"name": field.Name, "value": field.Value})
	}
	return out
}

func scriptData(cfg *theme.RendererConfig, scripts []controls.Script) []map[string]any {
	out := make([]map[string]any, 0, len(scripts))
	for _, script := range scripts {
		out = append(out, map[string]any{
			"src":    assetURL(cfg, script.Src),
			"type":   script.Type,
			"inline": script.Inline,
			"async":  script.Async,
			"defer":  script.Defer,
			"module": script.Module,
			"attrs":  controls.RenderAttrs(script.Attrs),
		})
	}
	return out
}

func uniqueStrings(values ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, group := range values {
		for _, value := range group {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			if _, ok := seen[value]; ok {
				continue
			}
			seen[value] = struct{}{}
			out = append(out, value)
		}
	}
	return out
}
