package controls

import (
	"encoding/json"
	"fmt"
	"html"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-formfields/components/choices"
)

// View is the render-ready description of one control. Values are
// pre-stringified so templates never format numbers themselves.
type View struct {
	ID          string            `json:"id"`
	Field       string            `json:"field"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	InputName   string            `json:"input_name"`
	InputID     string            `json:"input_id"`
	InputType   string            `json:"input_type,omitempty"`
	Label       string            `json:"label,omitempty"`
	Description string            `json:"description,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Value       string            `json:"value"`
	Values      []string          `json:"values,omitempty"`
	Checked     bool              `json:"checked"`
	Required    bool              `json:"required"`
	Multiple    bool              `json:"multiple"`
	Choices     []ChoiceView      `json:"choices,omitempty"`
	Attrs       map[string]string `json:"attrs,omitempty"`
	Errors      []string          `json:"errors,omitempty"`
	Options     map[string]any    `json:"options,omitempty"`
	// Raw is the typed field value, used for client-side data blobs.
	Raw any `json:"raw,omitempty"`
}

// ChoiceView is one selectable option.
type ChoiceView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// SetValue fills Value, Values and Checked from a typed field value.
func (v *View) SetValue(value any) {
	v.Raw = value
	v.Values = nil
	switch typed := value.(type) {
	case nil:
		v.Value = ""
	case string:
		v.Value = typed
	case bool:
		v.Checked = typed
		if typed {
			v.Value = "1"
		} else {
			v.Value = ""
		}
	case []any:
		values := make([]string, 0, len(typed))
		for _, item := range typed {
			values = append(values, Stringify(item))
		}
		v.Values = values
		v.Value = strings.Join(values, ", ")
	case []string:
		v.Values = slices.Clone(typed)
		v.Value = strings.Join(typed, ", ")
	default:
		v.Value = Stringify(value)
	}
}

// SetChoices marks options matching the current value as selected.
func (v *View) SetChoices(options []choices.Option) {
	if len(options) == 0 {
		v.Choices = nil
		return
	}
	out := make([]ChoiceView, 0, len(options))
	for _, option := range options {
		label := option.Label
		if label == "" {
			label = option.Value
		}
		out = append(out, ChoiceView{
			Value:    option.Value,
			Label:    label,
			Selected: v.selected(option.Value),
		})
	}
	v.Choices = out
}

func (v *View) selected(value string) bool {
	if len(v.Values) > 0 {
		return slices.Contains(v.Values, value)
	}
	return v.Value != "" && v.Value == value
}

// AttrHTML renders Attrs as escaped attributes, sorted by name, each with a
// leading space.
func (v View) AttrHTML() string {
	return RenderAttrs(v.Attrs)
}

// RenderAttrs renders attributes sorted by name. Names with characters
// outside [A-Za-z0-9_:.-] are dropped.
func RenderAttrs(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		if validAttrName(key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attrs[key]))
		b.WriteByte('"')
	}
	return b.String()
}

func validAttrName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == ':' || r == '.':
		default:
			return false
		}
	}
	return true
}

// Stringify formats scalar values the way they are submitted back.
func Stringify(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		if typed {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case map[string]any, []any:
		raw, err := json.Marshal(typed)
		if err != nil {
			return ""
		}
		return string(raw)
	default:
		return fmt.Sprint(value)
	}
}

// Humanize turns an id like "posts_per_page" into "Posts per page".
func Humanize(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '_' || r == '-' || r == '.' })
	if len(words) == 0 {
		return ""
	}
	phrase := strings.ToLower(strings.Join(words, " "))
	return strings.ToUpper(phrase[:1]) + phrase[1:]
}

func optionBool(options map[string]any, key string) bool {
	switch typed := options[key].(type) {
	case bool:
		return typed
	case string:
		parsed, _ := strconv.ParseBool(strings.TrimSpace(typed))
		return parsed
	case int:
		return typed != 0
	case float64:
		return typed != 0
	default:
		return false
	}
}

func optionString(options map[string]any, key, fallback string) string {
	if value, ok := options[key]; ok && value != nil {
		if s := strings.TrimSpace(Stringify(value)); s != "" {
			return s
		}
	}
	return fallback
}

func optionInt(options map[string]any, key string) (int, bool) {
	switch typed := options[key].(type) {
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case float64:
		return int(typed), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(typed))
		return parsed, err == nil
	default:
		return 0, false
	}
}
