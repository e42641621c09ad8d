package fields

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/goliatone/go-formfields/components/choices"
)

// ErrUnbound is returned by Control.Content when the control was built
// outside a registry.
var ErrUnbound = errors.New("fields: control is not bound to a registry")

// ControlConfig configures a control.
type ControlConfig struct {
	// Type is the variant tag (text, select, media...). Resolved from the
	// field when empty.
	Type string `mapstructure:"type" json:"type,omitempty"`
	// Field is the logical field id. Defaults to the control id.
	Field       string            `mapstructure:"field" json:"field,omitempty"`
	Section     string            `mapstructure:"section" json:"section,omitempty"`
	Label       string            `mapstructure:"label" json:"label,omitempty"`
	Description string            `mapstructure:"description" json:"description,omitempty"`
	Placeholder string            `mapstructure:"placeholder" json:"placeholder,omitempty"`
	Choices     []choices.Option  `mapstructure:"choices" json:"choices,omitempty"`
	Datasource  string            `mapstructure:"datasource" json:"datasource,omitempty"`
	Attrs       map[string]string `mapstructure:"attrs" json:"attrs,omitempty"`
	Priority    int               `mapstructure:"priority" json:"priority"`
	Capability  string            `mapstructure:"capability" json:"capability,omitempty"`
	Visible     string            `mapstructure:"visible" json:"visible,omitempty"`
	// Options holds variant specific settings (rows, multiple, button labels).
	Options map[string]any `mapstructure:",remain" json:"options,omitempty"`
}

// DefaultControlConfig returns the defaults applied before decoding args.
func DefaultControlConfig() ControlConfig {
	return ControlConfig{Priority: DefaultPriority}
}

func (c ControlConfig) clone() ControlConfig {
	c.Choices = slices.Clone(c.Choices)
	c.Attrs = maps.Clone(c.Attrs)
	c.Options = maps.Clone(c.Options)
	return c
}

// ControlBinding resolves what a control needs at render time. The registry
// supplies it so controls keep a non-owning reference to their field.
// scope is the request scope; the field is looked up there so an exact
// subtype field wins over a global one.
type ControlBinding interface {
	Field(c *Control, scope Scope) (*Field, bool)
	Content(ctx context.Context, c *Control, scope Scope, itemID string) (string, error)
}

// Control renders and parses input for one field.
type Control struct {
	id      string
	scope   Scope
	cfg     ControlConfig
	binding ControlBinding
}

var (
	_ Gated    = (*Control)(nil)
	_ Parented = (*Control)(nil)
)

// NewControl builds a control. binding may be nil for detached controls.
func NewControl(scope Scope, id string, cfg ControlConfig, binding ControlBinding) *Control {
	id = NormalizeID(id)
	cfg = cfg.clone()
	cfg.Field = NormalizeID(cfg.Field)
	if cfg.Field == "" {
		cfg.Field = id
	}
	cfg.Section = NormalizeID(cfg.Section)
	return &Control{id: id, scope: scope, cfg: cfg, binding: binding}
}

func (c *Control) ID() string          { return c.id }
func (c *Control) Kind() Kind          { return KindControl }
func (c *Control) Scope() Scope        { return c.scope }
func (c *Control) Priority() int       { return c.cfg.Priority }
func (c *Control) Capability() string  { return c.cfg.Capability }
func (c *Control) VisibleRule() string { return c.cfg.Visible }
func (c *Control) ParentID() string    { return c.cfg.Section }
func (c *Control) Type() string        { return c.cfg.Type }
func (c *Control) FieldID() string     { return c.cfg.Field }

// Section is the section id the control was registered under.
func (c *Control) Section() string { return c.cfg.Section }

// Config returns a copy of the control configuration.
func (c *Control) Config() ControlConfig { return c.cfg.clone() }

// Field resolves the bound field in the control's own scope.
func (c *Control) Field() (*Field, bool) {
	return c.FieldIn(c.scope)
}

// FieldIn resolves the bound field for a request scope. A global control
// rendered for post/page binds the post/page field when one exists.
func (c *Control) FieldIn(scope Scope) (*Field, bool) {
	if c.binding == nil {
		return nil, false
	}
	return c.binding.Field(c, scope)
}

// Content renders the control markup from the field's current value for
// itemID. Nothing is cached between calls.
func (c *Control) Content(ctx context.Context, itemID string) (string, error) {
	return c.ContentIn(ctx, c.scope, itemID)
}

// ContentIn is Content with the field resolved in scope.
func (c *Control) ContentIn(ctx context.Context, scope Scope, itemID string) (string, error) {
	if c.binding == nil {
		return "", ErrUnbound
	}
	return c.binding.Content(ctx, c, scope, itemID)
}
