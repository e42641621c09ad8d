package datastore

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Coerce converts value into the Go representation of dt:
//
//	string -> string, int -> int64, float -> float64, bool -> bool,
//	array  -> []any
//
// Conversion is weakly typed, so "42" becomes 42 and 1 becomes true. A nil
// value stays nil. Unknown data types pass the value through untouched.
func Coerce(dt DataType, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch dt {
	case DataTypeString, "":
		var out string
		if err := weakDecode(value, &out); err != nil {
			return nil, err
		}
		return out, nil
	case DataTypeInt:
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return int64(0), nil
		}
		var out int64
		if err := weakDecode(value, &out); err != nil {
			return nil, err
		}
		return out, nil
	case DataTypeFloat:
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return float64(0), nil
		}
		var out float64
		if err := weakDecode(value, &out); err != nil {
			return nil, err
		}
		return out, nil
	case DataTypeBool:
		var out bool
		if err := weakDecode(value, &out); err != nil {
			return nil, err
		}
		return out, nil
	case DataTypeArray:
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return []any{}, nil
		}
		var out []any
		if err := weakDecode(value, &out); err != nil {
			return nil, err
		}
		if out == nil {
			out = []any{}
		}
		return out, nil
	default:
		return value, nil
	}
}

func weakDecode(input, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       trimStringHook(),
		Result:           output,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("coerce %T: %w", input, err)
	}
	return nil
}

// trimStringHook trims surrounding whitespace from strings headed for numeric
// or boolean targets so submitted form input like " 12 " decodes cleanly.
func trimStringHook() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		trimmed := strings.TrimSpace(reflect.ValueOf(data).String())
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			// base 10 only; mapstructure would read "010" as octal
			if parsed, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
				return parsed, nil
			}
			return trimmed, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64, reflect.Bool:
			return trimmed, nil
		}
		return data, nil
	}
}
