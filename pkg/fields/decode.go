package fields

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/mitchellh/mapstructure"

	"github.com/goliatone/go-formfields/components/choices"
)

// DecodeContainer decodes registration args into a container config.
// Unknown keys are kept in Metadata.
func DecodeContainer(args map[string]any) (ContainerConfig, error) {
	cfg := DefaultContainerConfig()
	if err := decode(args, &cfg); err != nil {
		return ContainerConfig{}, err
	}
	if cfg.Parent == "" {
		// sections may name their screen with "screen"
		if screen, ok := cfg.Metadata["screen"].(string); ok {
			cfg.Parent = screen
			delete(cfg.Metadata, "screen")
		}
	}
	return cfg, nil
}

// DecodeField decodes registration args into a field config. An embedded
// "control" map is decoded as a ControlConfig.
func DecodeField(args map[string]any) (FieldConfig, error) {
	cfg := DefaultFieldConfig()
	if err := decode(args, &cfg); err != nil {
		return FieldConfig{}, err
	}
	if cfg.Control != nil && cfg.Control.Priority == 0 {
		cfg.Control.Priority = cfg.Priority
	}
	return cfg, nil
}

// DecodeControl decodes registration args into a control config. Unknown
// keys are kept in Options.
func DecodeControl(args map[string]any) (ControlConfig, error) {
	cfg := DefaultControlConfig()
	if err := decode(args, &cfg); err != nil {
		return ControlConfig{}, err
	}
	return cfg, nil
}

func decode(args map[string]any, out any) error {
	if len(args) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			choicesHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		Result: out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(snakeKeys(args)); err != nil {
		return fmt.Errorf("fields: decode args: %w", err)
	}
	return nil
}

var optionSliceType = reflect.TypeOf([]choices.Option{})

// choicesHook accepts value => label maps, plain string lists and lists of
// {value, label} maps for choice lists.
func choicesHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != optionSliceType {
		return data, nil
	}
	switch typed := data.(type) {
	case map[string]any:
		values := make(map[string]string, len(typed))
		for key, label := range typed {
			values[key] = fmt.Sprint(label)
		}
		return []choices.Option(choices.FromMap(values)), nil
	case map[string]string:
		return []choices.Option(choices.FromMap(typed)), nil
	case []string:
		out := make([]choices.Option, 0, len(typed))
		for _, value := range typed {
			out = append(out, choices.Option{Value: value, Label: value})
		}
		return out, nil
	case []any:
		out := make([]choices.Option, 0, len(typed))
		for _, item := range typed {
			switch entry := item.(type) {
			case map[string]any:
				value := fmt.Sprint(entry["value"])
				label, _ := entry["label"].(string)
				if label == "" {
					label = value
				}
				out = append(out, choices.Option{Value: value, Label: label})
			case nil:
				continue
			default:
				value := fmt.Sprint(entry)
				out = append(out, choices.Option{Value: value, Label: value})
			}
		}
		return out, nil
	}
	return data, nil
}

// snakeKeys rewrites camelCase keys ("dataType") to snake_case so YAML, JSON
// and Go callers can use either style. Only the nested control and rules
// maps are rewritten; attrs and variant options keep their keys.
func snakeKeys(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		key = toSnake(key)
		if nested, ok := value.(map[string]any); ok && (key == "control" || key == "rules") {
			value = snakeKeys(nested)
		}
		out[key] = value
	}
	return out
}

func toSnake(key string) string {
	key = strings.TrimSpace(key)
	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if r == '-' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
