package controls

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formfields/pkg/datastore"
)

// Built-in control types.
const (
	TypeText          = "text"
	TypeEmail         = "email"
	TypeURL           = "url"
	TypeNumber        = "number"
	TypePassword      = "password"
	TypeHidden        = "hidden"
	TypeTextarea      = "textarea"
	TypeCheckbox      = "checkbox"
	TypeCheckboxGroup = "checkbox-group"
	TypeRadio         = "radio"
	TypeSelect        = "select"
	TypeReadonly      = "readonly"
	TypeMedia         = "media"
	TypeRepeater      = "repeater"
)

// NewDefaultRegistry constructs a registry pre-populated with the built-in
// control variants.
func NewDefaultRegistry() *Registry {
	registry := New()

	for _, inputType := range []string{TypeText, TypeEmail, TypeURL, TypeHidden} {
		registry.MustRegister(inputType, Descriptor{
			Render: templateRenderer("controls.input", "input", inputPrepare(inputType)),
			Parse:  parseScalar,
		})
	}
	registry.MustRegister(TypePassword, Descriptor{
		Render: templateRenderer("controls.input", "input", inputPrepare(TypePassword)),
		Parse:  parsePassword,
	})
	registry.MustRegister(TypeNumber, Descriptor{
		Render:   templateRenderer("controls.input", "input", numberPrepare),
		Parse:    parseScalar,
		DataType: datastore.DataTypeFloat,
	})
	registry.MustRegister(TypeTextarea, Descriptor{
		Render: templateRenderer("controls.textarea", "textarea", textareaPrepare),
		Parse:  parseScalar,
	})
	registry.MustRegister(TypeCheckbox, Descriptor{
		Render:   templateRenderer("controls.checkbox", "checkbox", nil),
		Parse:    parseCheckbox,
		DataType: datastore.DataTypeBool,
	})
	registry.MustRegister(TypeCheckboxGroup, Descriptor{
		Render:   templateRenderer("controls.checkbox-group", "checkbox-group", nil),
		Parse:    parseMultiple,
		DataType: datastore.DataTypeArray,
		Multiple: true,
	})
	registry.MustRegister(TypeRadio, Descriptor{
		Render: templateRenderer("controls.radio", "radio", nil),
		Parse:  parseScalar,
	})
	registry.MustRegister(TypeSelect, Descriptor{
		Render: templateRenderer("controls.select", "select", nil),
		Parse:  parseSelect,
	})
	registry.MustRegister(TypeReadonly, Descriptor{
		Render: templateRenderer("controls.readonly", "readonly", nil),
		Parse:  parseNothing,
	})
	registry.MustRegister(TypeMedia, Descriptor{
		Render:  renderMedia,
		Parse:   parseScalar,
		Scripts: []Script{{Src: "/assets/formfields/media.js", Defer: true}},
	})
	registry.MustRegister(TypeRepeater, Descriptor{
		Render:   renderRepeater,
		Parse:    parseJSONList,
		DataType: datastore.DataTypeArray,
		Scripts:  []Script{{Src: "/assets/formfields/repeater.js", Defer: true}},
	})

	return registry
}

type prepareFunc func(view *View)

func templateRenderer(partialKey, templateName string, prepare prepareFunc) RenderFunc {
	return func(view View, data RenderData) (string, error) {
		if data.Template == nil {
			return "", fmt.Errorf("controls: template renderer not configured for %q", templateName)
		}

		resolvedTemplate := templateName
		if data.Partials != nil {
			if candidate := strings.TrimSpace(data.Partials[partialKey]); candidate != "" {
				resolvedTemplate = candidate
			}
		}

		view.Attrs = cloneStringMap(view.Attrs)
		if prepare != nil {
			prepare(&view)
		}
		if len(view.Errors) > 0 {
			if view.Attrs == nil {
				view.Attrs = map[string]string{}
			}
			view.Attrs["aria-invalid"] = "true"
		}

		payload := map[string]any{
			"control": view,
			"attrs":   view.AttrHTML(),
			"config":  view.Options,
		}
		rendered, err := data.Template.RenderTemplate(resolvedTemplate, payload)
		if err != nil {
			return "", fmt.Errorf("controls: render template %q: %w", templateName, err)
		}
		return strings.TrimSpace(rendered), nil
	}
}

func inputPrepare(inputType string) prepareFunc {
	return func(view *View) {
		view.InputType = inputType
		if inputType == TypePassword {
			// stored secrets are never echoed back
			view.Value = ""
		}
		setClass(view, "regular-text")
	}
}

func numberPrepare(view *View) {
	view.InputType = TypeNumber
	for _, key := range []string{"min", "max", "step"} {
		if value := optionString(view.Options, key, ""); value != "" {
			setAttr(view, key, value)
		}
	}
	setClass(view, "small-text")
}

func textareaPrepare(view *View) {
	rows := 5
	if value, ok := optionInt(view.Options, "rows"); ok && value > 0 {
		rows = value
	}
	setAttr(view, "rows", strconv.Itoa(rows))
	setClass(view, "large-text")
}

func setAttr(view *View, key, value string) {
	if view.Attrs == nil {
		view.Attrs = map[string]string{}
	}
	if _, exists := view.Attrs[key]; !exists {
		view.Attrs[key] = value
	}
}

func setClass(view *View, class string) {
	setAttr(view, "class", class)
}

func parseScalar(values []string) (any, bool, error) {
	if len(values) == 0 {
		return nil, false, nil
	}
	return values[0], true, nil
}

// parsePassword keeps the stored secret when the input comes back blank,
// since the control never renders it.
func parsePassword(values []string) (any, bool, error) {
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return nil, false, nil
	}
	return values[0], true, nil
}

// parseCheckbox treats an absent checkbox as unchecked.
func parseCheckbox(values []string) (any, bool, error) {
	if len(values) == 0 {
		return false, true, nil
	}
	switch strings.ToLower(strings.TrimSpace(values[len(values)-1])) {
	case "", "0", "false", "off", "no":
		return false, true, nil
	}
	return true, true, nil
}

// parseMultiple treats an absent group as an empty selection.
func parseMultiple(values []string) (any, bool, error) {
	out := make([]any, 0, len(values))
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		out = append(out, value)
	}
	return out, true, nil
}

func parseSelect(values []string) (any, bool, error) {
	if len(values) > 1 {
		return parseMultiple(values)
	}
	return parseScalar(values)
}

func parseNothing([]string) (any, bool, error) {
	return nil, false, nil
}

func parseJSONList(values []string) (any, bool, error) {
	if len(values) == 0 {
		return nil, false, nil
	}
	raw := strings.TrimSpace(values[0])
	if raw == "" {
		return []any{}, true, nil
	}
	var out []any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, false, fmt.Errorf("controls: invalid list payload: %w", err)
	}
	if out == nil {
		out = []any{}
	}
	return out, true, nil
}
