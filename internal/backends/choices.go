package backends

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gorm.io/gorm"

	"github.com/goliatone/go-formfields/components/choices"
	"github.com/goliatone/go-formfields/components/timezones"
	"github.com/goliatone/go-formfields/pkg/datastore/sqlstore"
	"github.com/goliatone/go-formfields/pkg/definitions"
	"github.com/goliatone/go-formfields/pkg/fields"
)

// sourceConfig is the args shape of a definitions datasource entry. Either
// Options (static) or Table (SQL) is set.
type sourceConfig struct {
	Options any    `mapstructure:"options"`
	Table   string `mapstructure:"table"`
	Value   string `mapstructure:"value"`
	Label   string `mapstructure:"label"`
	Where   string `mapstructure:"where"`
	Args    []any  `mapstructure:"args"`
	Limit   int    `mapstructure:"limit"`
}

// Choices builds a choices registry from the datasource entries. Table
// sources need db; they are rejected when the backend is not SQL. The
// timezones source is added unless an entry claims its name.
func Choices(entries []definitions.Entry, db *gorm.DB) (*choices.Registry, error) {
	reg := choices.NewRegistry()
	for _, entry := range entries {
		var cfg sourceConfig
		if err := mapstructure.WeakDecode(entry.Args, &cfg); err != nil {
			return nil, fmt.Errorf("backends: datasource %q: %w", entry.ID, err)
		}

		var source choices.Source
		switch {
		case cfg.Table != "":
			if db == nil {
				return nil, fmt.Errorf("backends: datasource %q reads table %q but the backend is not SQL", entry.ID, cfg.Table)
			}
			var opts []sqlstore.TableOption
			if cfg.Where != "" {
				opts = append(opts, sqlstore.WithWhere(cfg.Where, cfg.Args...))
			}
			if cfg.Limit > 0 {
				opts = append(opts, sqlstore.WithLimit(cfg.Limit))
			}
			value := cfg.Value
			if value == "" {
				value = "id"
			}
			table, err := sqlstore.NewTableSource(db, cfg.Table, value, cfg.Label, opts...)
			if err != nil {
				return nil, fmt.Errorf("backends: datasource %q: %w", entry.ID, err)
			}
			source = table
		default:
			// the control decoder already understands every choice list shape
			control, err := fields.DecodeControl(map[string]any{"choices": cfg.Options})
			if err != nil {
				return nil, fmt.Errorf("backends: datasource %q: %w", entry.ID, err)
			}
			source = choices.Static(control.Choices)
		}

		if err := reg.Register(entry.ID, source); err != nil {
			return nil, fmt.Errorf("backends: %w", err)
		}
	}
	if _, ok := reg.Lookup(timezones.DatasourceName); !ok {
		reg.MustRegister(timezones.DatasourceName, timezones.New(timezones.WithContinentsOnly(true), timezones.WithOffsets(true)))
	}
	return reg, nil
}
