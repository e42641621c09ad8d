package fields

import (
	"maps"
	"strings"
)

// Layout styles a screen may request.
const (
	StyleTable   = "table"
	StyleStacked = "stacked"
)

// ContainerConfig configures a screen or section.
type ContainerConfig struct {
	Type        string `mapstructure:"type" json:"type,omitempty"`
	Title       string `mapstructure:"title" json:"title,omitempty"`
	Description string `mapstructure:"description" json:"description,omitempty"`
	// Parent is the owning screen id for sections.
	Parent     string `mapstructure:"parent" json:"parent,omitempty"`
	Priority   int    `mapstructure:"priority" json:"priority"`
	Capability string `mapstructure:"capability" json:"capability,omitempty"`
	Visible    string `mapstructure:"visible" json:"visible,omitempty"`
	// Style selects the screen layout: table (default) or stacked.
	Style    string         `mapstructure:"style" json:"style,omitempty"`
	Metadata map[string]any `mapstructure:",remain" json:"metadata,omitempty"`
}

// DefaultContainerConfig returns the defaults applied before decoding args.
func DefaultContainerConfig() ContainerConfig {
	return ContainerConfig{Priority: DefaultPriority}
}

// Container is a screen or a section.
type Container struct {
	id    string
	kind  Kind
	scope Scope
	cfg   ContainerConfig
}

var (
	_ Gated    = (*Container)(nil)
	_ Parented = (*Container)(nil)
)

// NewContainer builds a screen or section. Other kinds yield nil.
func NewContainer(kind Kind, scope Scope, id string, cfg ContainerConfig) *Container {
	if !kind.Container() {
		return nil
	}
	cfg.Parent = NormalizeID(cfg.Parent)
	cfg.Style = strings.ToLower(strings.TrimSpace(cfg.Style))
	if kind == KindScreen && cfg.Style == "" {
		cfg.Style = StyleTable
	}
	if kind == KindScreen {
		cfg.Parent = ""
	}
	cfg.Metadata = maps.Clone(cfg.Metadata)
	return &Container{id: NormalizeID(id), kind: kind, scope: scope, cfg: cfg}
}

func (c *Container) ID() string          { return c.id }
func (c *Container) Kind() Kind          { return c.kind }
func (c *Container) Scope() Scope        { return c.scope }
func (c *Container) Priority() int       { return c.cfg.Priority }
func (c *Container) Capability() string  { return c.cfg.Capability }
func (c *Container) VisibleRule() string { return c.cfg.Visible }
func (c *Container) ParentID() string    { return c.cfg.Parent }
func (c *Container) Type() string        { return c.cfg.Type }
func (c *Container) Title() string       { return c.cfg.Title }
func (c *Container) Description() string { return c.cfg.Description }
func (c *Container) Style() string       { return c.cfg.Style }

// Config returns a copy of the container configuration.
func (c *Container) Config() ContainerConfig {
	cfg := c.cfg
	cfg.Metadata = maps.Clone(c.cfg.Metadata)
	return cfg
}
