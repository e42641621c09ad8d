// Package validation checks submitted field values against declarative rules.
// Rules compile to an OpenAPI 3 schema so the same constraints can be exported
// to clients and evaluated server side with one engine.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formfields/pkg/datastore"
)

// Rules are the constraints a field may declare.
type Rules struct {
	Required  bool     `mapstructure:"required" json:"required,omitempty" yaml:"required,omitempty"`
	Enum      []any    `mapstructure:"enum" json:"enum,omitempty" yaml:"enum,omitempty"`
	MinLength int      `mapstructure:"min_length" json:"minLength,omitempty" yaml:"min_length,omitempty"`
	MaxLength int      `mapstructure:"max_length" json:"maxLength,omitempty" yaml:"max_length,omitempty"`
	Pattern   string   `mapstructure:"pattern" json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Min       *float64 `mapstructure:"min" json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `mapstructure:"max" json:"max,omitempty" yaml:"max,omitempty"`
	MinItems  int      `mapstructure:"min_items" json:"minItems,omitempty" yaml:"min_items,omitempty"`
	MaxItems  int      `mapstructure:"max_items" json:"maxItems,omitempty" yaml:"max_items,omitempty"`
}

// Empty reports whether no constraint is set.
func (r Rules) Empty() bool {
	return !r.Required && len(r.Enum) == 0 && r.MinLength == 0 && r.MaxLength == 0 &&
		r.Pattern == "" && r.Min == nil && r.Max == nil && r.MinItems == 0 && r.MaxItems == 0
}

// Issue represents a validation error with optional location metadata.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (i Issue) Error() string {
	if i.Field == "" {
		return i.Message
	}
	return i.Field + ": " + i.Message
}

// Validator is a compiled rule set for one field.
type Validator struct {
	field    string
	required bool
	schema   *openapi3.Schema
}

// Compile builds the schema for rules applied to values of data type dt.
func Compile(field string, dt datastore.DataType, rules Rules) (*Validator, error) {
	if rules.Pattern != "" {
		if _, err := regexp.Compile(rules.Pattern); err != nil {
			return nil, fmt.Errorf("validation: %s pattern: %w", field, err)
		}
	}
	if rules.Min != nil && rules.Max != nil && *rules.Min > *rules.Max {
		return nil, fmt.Errorf("validation: %s min %v exceeds max %v", field, *rules.Min, *rules.Max)
	}
	enum, err := normalizeEnum(rules.Enum)
	if err != nil {
		return nil, fmt.Errorf("validation: %s enum: %w", field, err)
	}

	var schema *openapi3.Schema
	switch dt {
	case datastore.DataTypeInt:
		schema = numeric(openapi3.NewIntegerSchema(), rules)
	case datastore.DataTypeFloat:
		schema = numeric(openapi3.NewFloat64Schema(), rules)
	case datastore.DataTypeBool:
		schema = openapi3.NewBoolSchema()
	case datastore.DataTypeArray:
		// items are unconstrained unless an enum restricts them; repeater rows
		// are objects
		items := openapi3.NewSchema()
		if len(enum) > 0 {
			items = openapi3.NewStringSchema().WithEnum(enum...)
			enum = nil
		}
		schema = openapi3.NewArraySchema().WithItems(items)
		if rules.MinItems > 0 {
			schema = schema.WithMinItems(int64(rules.MinItems))
		}
		if rules.MaxItems > 0 {
			schema = schema.WithMaxItems(int64(rules.MaxItems))
		}
	default:
		schema = openapi3.NewStringSchema()
		if rules.MinLength > 0 {
			schema = schema.WithMinLength(int64(rules.MinLength))
		}
		if rules.MaxLength > 0 {
			schema = schema.WithMaxLength(int64(rules.MaxLength))
		}
		if rules.Pattern != "" {
			schema = schema.WithPattern(rules.Pattern)
		}
	}
	if len(enum) > 0 {
		schema = schema.WithEnum(enum...)
	}

	return &Validator{field: field, required: rules.Required, schema: schema}, nil
}

func numeric(schema *openapi3.Schema, rules Rules) *openapi3.Schema {
	if rules.Min != nil {
		schema = schema.WithMin(*rules.Min)
	}
	if rules.Max != nil {
		schema = schema.WithMax(*rules.Max)
	}
	return schema
}

// Schema exposes the compiled OpenAPI schema.
func (v *Validator) Schema() *openapi3.Schema {
	if v == nil {
		return nil
	}
	return v.schema
}

// Validate checks an already coerced value. Empty values only fail the
// required rule; the remaining constraints apply to non-empty input.
func (v *Validator) Validate(value any) []Issue {
	if v == nil {
		return nil
	}
	if isEmpty(value) {
		if v.required {
			return []Issue{{Field: v.field, Message: "is required"}}
		}
		return nil
	}

	normalized, err := normalizeJSON(value)
	if err != nil {
		return []Issue{{Field: v.field, Message: err.Error()}}
	}

	err = v.schema.VisitJSON(normalized, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		issues := make([]Issue, 0, len(multi))
		for _, item := range multi {
			issues = append(issues, v.issueFromError(item))
		}
		return issues
	}
	return []Issue{v.issueFromError(err)}
}

func (v *Validator) issueFromError(err error) Issue {
	issue := Issue{Field: v.field, Message: strings.TrimSpace(err.Error())}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		issue.Message = strings.TrimSpace(schemaErr.Reason)
		if pointer := schemaErr.JSONPointer(); len(pointer) > 0 {
			issue.Path = strings.Join(pointer, ".")
		}
	}
	return issue
}

// Messages flattens issues into their messages.
func Messages(issues []Issue) []string {
	if len(issues) == 0 {
		return nil
	}
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Message)
	}
	return out
}

func isEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case []any:
		return len(typed) == 0
	case []string:
		return len(typed) == 0
	default:
		return false
	}
}

func normalizeJSON(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return out, nil
}

func normalizeEnum(values []any) ([]any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]any, 0, len(values))
	for _, value := range values {
		normalized, err := normalizeJSON(value)
		if err != nil {
			return nil, err
		}
		out = append(out, normalized)
	}
	return out, nil
}
