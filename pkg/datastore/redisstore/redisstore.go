// Package redisstore persists field values in Redis. Each value is stored as
// JSON under "<prefix><object>:<item>:<name>".
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-formfields/pkg/datastore"
)

const DefaultPrefix = "formfields:"

// Backend implements datastore.Backend on top of a redis client.
type Backend struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

var _ datastore.Backend = (*Backend)(nil)

// Option customises the backend.
type Option func(*Backend)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) Option {
	return func(b *Backend) { b.prefix = prefix }
}

// WithTTL expires values after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(b *Backend) {
		if ttl > 0 {
			b.ttl = ttl
		}
	}
}

// New wraps an existing client.
func New(client redis.Cmdable, opts ...Option) (*Backend, error) {
	if client == nil {
		return nil, errors.New("redisstore: client is required")
	}
	b := &Backend{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

// Dial connects to addr and verifies the connection with PING.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redisstore: ping %s: %w", addr, err)
	}
	return client, nil
}

func (b *Backend) Get(ctx context.Context, key datastore.Key) (any, bool, error) {
	raw, err := b.client.Get(ctx, b.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("redisstore: decode %s: %w", key, err)
	}
	return out, true, nil
}

func (b *Backend) Set(ctx context.Context, key datastore.Key, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redisstore: encode %s: %w", key, err)
	}
	return b.client.Set(ctx, b.redisKey(key), payload, b.ttl).Err()
}

func (b *Backend) Delete(ctx context.Context, key datastore.Key) error {
	return b.client.Del(ctx, b.redisKey(key)).Err()
}

func (b *Backend) redisKey(key datastore.Key) string {
	return b.prefix + key.String()
}
