package localstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/ginzapet/storefront/pkg/redis"
)

// Redis persists documents in a shared Redis instance, for shoppers whose
// session roams across devices.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) (*Redis, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Load(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.client.StateKey(key))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	return []byte(value), nil
}

func (r *Redis) Save(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.client.StateKey(key), value, 0); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.client.StateKey(key)); err != nil {
		return fmt.Errorf("clearing %s: %w", key, err)
	}
	return nil
}
