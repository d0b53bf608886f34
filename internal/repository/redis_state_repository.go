package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-booking/internal/catalog"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// DefaultStateKey is the Redis key used when none is configured.
const DefaultStateKey = "cinema:state"

// RedisStateRepo stores the snapshot as one JSON value under a single key.
// A SET replaces the value atomically; durability follows the server's
// persistence settings (AOF with appendfsync always for strict durability).
type RedisStateRepo struct {
	client *redis.Client
	key    string
}

// NewRedisStateRepo returns a RedisStateRepo using key, or DefaultStateKey
// when key is empty.
func NewRedisStateRepo(client *redis.Client, key string) *RedisStateRepo {
	if key == "" {
		key = DefaultStateKey
	}
	return &RedisStateRepo{client: client, key: key}
}

// Load fetches and decodes the snapshot.  A missing key yields the seed
// state.
func (r *RedisStateRepo) Load(ctx context.Context) (model.AggregateState, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return catalog.SeedState(), nil
		}
		return model.AggregateState{}, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	var st model.AggregateState
	if err := json.Unmarshal(data, &st); err != nil {
		return model.AggregateState{}, fmt.Errorf("%w: redis key %s: %v", ErrCorruptState, r.key, err)
	}
	st.Normalize()
	return st, nil
}

// Save encodes and stores the snapshot without expiry.
func (r *RedisStateRepo) Save(ctx context.Context, st model.AggregateState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}
