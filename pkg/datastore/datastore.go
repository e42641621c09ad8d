package datastore

import (
	"context"
	"errors"
	"strings"
)

// DataType hints how persisted values are coerced on read and write.
type DataType string

const (
	DataTypeString DataType = "string"
	DataTypeInt    DataType = "int"
	DataTypeFloat  DataType = "float"
	DataTypeBool   DataType = "bool"
	DataTypeArray  DataType = "array"
)

// Built-in store type tags.
const (
	TypeOption = "option"
	TypeMeta   = "meta"
)

// OptionNamespace is the backend object type used for option stores. Options
// are global to the installation, so they never carry an item id.
const OptionNamespace = "option"

var (
	// ErrItemRequired is returned by item-scoped stores when no item id is
	// supplied.
	ErrItemRequired = errors.New("datastore: item id is required")
	// ErrUnknownType is returned when no factory matches a store type tag.
	ErrUnknownType = errors.New("datastore: unknown store type")
)

// Key addresses one persisted value inside a Backend.
type Key struct {
	ObjectType string
	ItemID     string
	Name       string
}

// String renders the key as "object:item:name", the form used by key-value
// backends.
func (k Key) String() string {
	return k.ObjectType + ":" + k.ItemID + ":" + k.Name
}

// Backend is the host persistence primitive: a key-value store with get/set
// semantics. Implementations return found=false (and no error) for missing
// keys.
type Backend interface {
	Get(ctx context.Context, key Key) (value any, found bool, err error)
	Set(ctx context.Context, key Key, value any) error
	Delete(ctx context.Context, key Key) error
}

// Config carries everything a factory needs to construct a DataStore.
type Config struct {
	// ID is the owning field id.
	ID string
	// Name is the persistence key. Defaults to ID.
	Name string
	// Type selects the factory (option, meta, ...).
	Type string
	// ObjectType is the owning field's object type (post, user, settings...).
	ObjectType string
	// DataType drives coercion. Defaults to DataTypeString.
	DataType DataType
	// Default is returned when nothing has been persisted yet.
	Default any
}

func (c Config) normalized() Config {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		c.Name = c.ID
	}
	c.Type = normalize(c.Type)
	if c.DataType == "" {
		c.DataType = DataTypeString
	}
	return c
}

// DataStore persists and retrieves one field's value.
type DataStore interface {
	ID() string
	Name() string
	Type() string
	DataType() DataType
	// Value returns the persisted value coerced to DataType, or the configured
	// default when nothing has been stored.
	Value(ctx context.Context, itemID string) (any, error)
	// Save coerces and persists value. Backend failures are returned wrapped
	// so callers can still match the original error.
	Save(ctx context.Context, itemID string, value any) error
	Delete(ctx context.Context, itemID string) error
}

// DefaultType returns the store type used when a field omits one: settings
// live in options, everything else in object meta.
func DefaultType(objectType string) string {
	switch normalize(objectType) {
	case "settings", "option", "options":
		return TypeOption
	default:
		return TypeMeta
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
