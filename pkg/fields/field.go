package fields

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/goliatone/go-formfields/pkg/datastore"
	"github.com/goliatone/go-formfields/pkg/sanitize"
	"github.com/goliatone/go-formfields/pkg/validation"
)

// FieldConfig configures a field. A field owns exactly one data store.
type FieldConfig struct {
	// Type selects the field factory and doubles as the control type hint.
	Type        string `mapstructure:"type" json:"type,omitempty"`
	Name        string `mapstructure:"name" json:"name,omitempty"`
	Label       string `mapstructure:"label" json:"label,omitempty"`
	Description string `mapstructure:"description" json:"description,omitempty"`
	// DataType drives coercion; defaults from the control variant, then string.
	DataType datastore.DataType `mapstructure:"data_type" json:"data_type,omitempty"`
	Default  any                `mapstructure:"default" json:"default,omitempty"`
	// DataStore is the store type tag (option, meta, ...). Defaults from the
	// object type.
	DataStore  string           `mapstructure:"data_store" json:"data_store,omitempty"`
	Section    string           `mapstructure:"section" json:"section,omitempty"`
	Priority   int              `mapstructure:"priority" json:"priority"`
	Capability string           `mapstructure:"capability" json:"capability,omitempty"`
	Sanitizer  string           `mapstructure:"sanitizer" json:"sanitizer,omitempty"`
	Rules      validation.Rules `mapstructure:"rules" json:"rules"`
	// Control, when set, registers a control bound to this field.
	Control  *ControlConfig `mapstructure:"control" json:"control,omitempty"`
	Metadata map[string]any `mapstructure:",remain" json:"metadata,omitempty"`
}

// DefaultFieldConfig returns the defaults applied before decoding args.
func DefaultFieldConfig() FieldConfig {
	return FieldConfig{Priority: DefaultPriority}
}

// FieldDeps are the collaborators resolved by the registry when a field is
// constructed.
type FieldDeps struct {
	Store     datastore.DataStore
	Validator *validation.Validator
	Sanitize  sanitize.Func
}

// Field binds a persisted value to its sanitisation and validation rules.
type Field struct {
	id        string
	scope     Scope
	cfg       FieldConfig
	store     datastore.DataStore
	validator *validation.Validator
	sanitize  sanitize.Func
}

var (
	_ Gated    = (*Field)(nil)
	_ Parented = (*Field)(nil)
)

// NewField builds a field. The data store is required.
func NewField(scope Scope, id string, cfg FieldConfig, deps FieldDeps) (*Field, error) {
	id = NormalizeID(id)
	if id == "" {
		return nil, errors.New("fields: field id is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("fields: field %q has no data store", id)
	}
	cfg.Section = NormalizeID(cfg.Section)
	cfg.DataType = deps.Store.DataType()
	cfg.Metadata = maps.Clone(cfg.Metadata)
	return &Field{
		id:        id,
		scope:     scope,
		cfg:       cfg,
		store:     deps.Store,
		validator: deps.Validator,
		sanitize:  deps.Sanitize,
	}, nil
}

func (f *Field) ID() string                   { return f.id }
func (f *Field) Kind() Kind                   { return KindField }
func (f *Field) Scope() Scope                 { return f.scope }
func (f *Field) Priority() int                { return f.cfg.Priority }
func (f *Field) Capability() string           { return f.cfg.Capability }
func (f *Field) VisibleRule() string          { return "" }
func (f *Field) ParentID() string             { return f.cfg.Section }
func (f *Field) Type() string                 { return f.cfg.Type }
func (f *Field) Label() string                { return f.cfg.Label }
func (f *Field) Description() string          { return f.cfg.Description }
func (f *Field) DataType() datastore.DataType { return f.cfg.DataType }
func (f *Field) Rules() validation.Rules      { return f.cfg.Rules }
func (f *Field) Store() datastore.DataStore   { return f.store }

// Config returns a copy of the field configuration.
func (f *Field) Config() FieldConfig {
	cfg := f.cfg
	cfg.Metadata = maps.Clone(f.cfg.Metadata)
	if f.cfg.Control != nil {
		control := f.cfg.Control.clone()
		cfg.Control = &control
	}
	return cfg
}

// Value reads the current value for itemID.
func (f *Field) Value(ctx context.Context, itemID string) (any, error) {
	return f.store.Value(ctx, itemID)
}

// Save runs sanitize, coerce, validate and store. Validation problems are
// returned as issues and leave the store untouched; persistence failures are
// returned as errors.
func (f *Field) Save(ctx context.Context, itemID string, raw any) ([]validation.Issue, error) {
	value := raw
	if f.sanitize != nil {
		value = f.sanitize(value)
	}

	coerced, err := datastore.Coerce(f.cfg.DataType, value)
	if err != nil {
		return []validation.Issue{{
			Field:   f.id,
			Message: fmt.Sprintf("must be a valid %s", f.cfg.DataType),
		}}, nil
	}

	if issues := f.validator.Validate(coerced); len(issues) > 0 {
		return issues, nil
	}

	if err := f.store.Save(ctx, itemID, coerced); err != nil {
		return nil, fmt.Errorf("fields: save %s: %w", f.id, err)
	}
	return nil, nil
}
