// Package memory provides an in-process datastore.Backend used by tests, the
// CLI and single-node deployments that do not need durable storage.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/goliatone/go-formfields/pkg/datastore"
)

// Backend keeps values in a map guarded by a RWMutex.
type Backend struct {
	mu     sync.RWMutex
	values map[datastore.Key]any
}

var _ datastore.Backend = (*Backend)(nil)

// New creates an empty backend.
func New() *Backend {
	return &Backend{values: make(map[datastore.Key]any)}
}

func (b *Backend) Get(ctx context.Context, key datastore.Key) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	value, ok := b.values[key]
	return cloneValue(value), ok, nil
}

func (b *Backend) Set(ctx context.Context, key datastore.Key, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = cloneValue(value)
	return nil
}

func (b *Backend) Delete(ctx context.Context, key datastore.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.values, key)
	return nil
}

// Keys returns every stored key ordered by their string form.
func (b *Backend) Keys() []datastore.Key {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]datastore.Key, 0, len(b.values))
	for key := range b.values {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

// Len reports how many values are stored.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.values)
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case []any:
		return slices.Clone(typed)
	case []string:
		return slices.Clone(typed)
	default:
		return value
	}
}
