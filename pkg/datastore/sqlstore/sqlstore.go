// Package sqlstore persists field values through GORM. Values are stored as
// JSON in a single key/value table so every store type (options, post meta,
// user meta...) shares one schema. SQLite (pure Go) and MySQL dialects are
// supported out of the box.
package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/goliatone/go-formfields/pkg/datastore"
)

// Supported dialect names for Open.
const (
	DialectSQLite = "sqlite"
	DialectMySQL  = "mysql"
)

// Value is the row persisted for every (object type, item, name) key.
type Value struct {
	ID         uint           `gorm:"primaryKey"`
	ObjectType string         `gorm:"size:64;not null;uniqueIndex:idx_formfields_value_key,priority:1"`
	ItemID     string         `gorm:"size:191;not null;uniqueIndex:idx_formfields_value_key,priority:2"`
	Name       string         `gorm:"size:191;not null;uniqueIndex:idx_formfields_value_key,priority:3"`
	Value      datatypes.JSON `gorm:"not null"`
	UpdatedAt  time.Time
}

// envelope wraps every stored value in an object. Bare scalars would take
// numeric affinity in SQLite's JSON column and no longer scan as JSON.
type envelope struct {
	V any `json:"v"`
}

// TableName pins the table name independent of GORM naming strategies.
func (Value) TableName() string { return "formfields_values" }

// Backend implements datastore.Backend over a *gorm.DB.
type Backend struct {
	db *gorm.DB
}

var _ datastore.Backend = (*Backend)(nil)

// New wraps an open database handle.
func New(db *gorm.DB) (*Backend, error) {
	if db == nil {
		return nil, errors.New("sqlstore: db is required")
	}
	return &Backend{db: db}, nil
}

// Open connects to the supplied dialect. An empty gorm config is used when
// cfg is nil.
func Open(dialect, dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	if cfg == nil {
		cfg = &gorm.Config{}
	}
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case DialectSQLite, "sqlite3", "":
		if strings.TrimSpace(dsn) == "" {
			dsn = "file::memory:"
		}
		dialector = sqlite.Open(dsn)
	case DialectMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("sqlstore: unsupported dialect %q", dialect)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", dialect, err)
	}
	return db, nil
}

// Migrate creates or updates the values table.
func (b *Backend) Migrate(ctx context.Context) error {
	if err := b.db.WithContext(ctx).AutoMigrate(&Value{}); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return nil
}

func (b *Backend) Get(ctx context.Context, key datastore.Key) (any, bool, error) {
	var row Value
	err := b.scoped(ctx, key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var out envelope
	if err := json.Unmarshal(row.Value, &out); err != nil {
		return nil, false, fmt.Errorf("sqlstore: decode %s: %w", key, err)
	}
	return out.V, true, nil
}

func (b *Backend) Set(ctx context.Context, key datastore.Key, value any) error {
	payload, err := json.Marshal(envelope{V: value})
	if err != nil {
		return fmt.Errorf("sqlstore: encode %s: %w", key, err)
	}

	row := Value{
		ObjectType: key.ObjectType,
		ItemID:     key.ItemID,
		Name:       key.Name,
		Value:      datatypes.JSON(payload),
	}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "object_type"},
			{Name: "item_id"},
			{Name: "name"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

func (b *Backend) Delete(ctx context.Context, key datastore.Key) error {
	return b.scoped(ctx, key).Delete(&Value{}).Error
}

func (b *Backend) scoped(ctx context.Context, key datastore.Key) *gorm.DB {
	return b.db.WithContext(ctx).
		Where("object_type = ? AND item_id = ? AND name = ?", key.ObjectType, key.ItemID, key.Name)
}
