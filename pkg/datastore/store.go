package datastore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type keyFunc func(cfg Config, itemID string) (Key, error)

// keyedStore is the shared implementation behind the built-in store types;
// only the key derivation differs between them.
type keyedStore struct {
	cfg     Config
	backend Backend
	key     keyFunc
}

// NewOptionStore builds a store persisting into the global option namespace.
// The item id is ignored.
func NewOptionStore(cfg Config, backend Backend) (DataStore, error) {
	return newKeyedStore(cfg, backend, TypeOption, optionKey)
}

// NewMetaStore builds a store persisting per-object meta values. Every read
// and write requires an item id.
func NewMetaStore(cfg Config, backend Backend) (DataStore, error) {
	return newKeyedStore(cfg, backend, TypeMeta, metaKey)
}

func newKeyedStore(cfg Config, backend Backend, storeType string, key keyFunc) (DataStore, error) {
	if backend == nil {
		return nil, errors.New("datastore: backend is required")
	}
	cfg = cfg.normalized()
	if cfg.ID == "" {
		return nil, errors.New("datastore: id is required")
	}
	cfg.Type = storeType

	if cfg.Default != nil {
		def, err := Coerce(cfg.DataType, cfg.Default)
		if err != nil {
			return nil, fmt.Errorf("datastore: %s default: %w", cfg.ID, err)
		}
		cfg.Default = def
	}

	return &keyedStore{cfg: cfg, backend: backend, key: key}, nil
}

func optionKey(cfg Config, _ string) (Key, error) {
	return Key{ObjectType: OptionNamespace, Name: cfg.Name}, nil
}

func metaKey(cfg Config, itemID string) (Key, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return Key{}, fmt.Errorf("%w (store %q)", ErrItemRequired, cfg.ID)
	}
	return Key{ObjectType: cfg.ObjectType, ItemID: itemID, Name: cfg.Name}, nil
}

func (s *keyedStore) ID() string         { return s.cfg.ID }
func (s *keyedStore) Name() string       { return s.cfg.Name }
func (s *keyedStore) Type() string       { return s.cfg.Type }
func (s *keyedStore) DataType() DataType { return s.cfg.DataType }

func (s *keyedStore) Value(ctx context.Context, itemID string) (any, error) {
	key, err := s.key(s.cfg, itemID)
	if err != nil {
		return nil, err
	}

	raw, found, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("datastore: get %s: %w", key, err)
	}
	if !found || raw == nil {
		return s.cfg.Default, nil
	}

	value, err := Coerce(s.cfg.DataType, raw)
	if err != nil {
		return nil, fmt.Errorf("datastore: decode %s: %w", key, err)
	}
	return value, nil
}

func (s *keyedStore) Save(ctx context.Context, itemID string, value any) error {
	key, err := s.key(s.cfg, itemID)
	if err != nil {
		return err
	}

	coerced, err := Coerce(s.cfg.DataType, value)
	if err != nil {
		return fmt.Errorf("datastore: %s: %w", s.cfg.ID, err)
	}
	if err := s.backend.Set(ctx, key, coerced); err != nil {
		return fmt.Errorf("datastore: set %s: %w", key, err)
	}
	return nil
}

func (s *keyedStore) Delete(ctx context.Context, itemID string) error {
	key, err := s.key(s.cfg, itemID)
	if err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("datastore: delete %s: %w", key, err)
	}
	return nil
}
