package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "horizon:workflow:"

// RedisStore keeps the snapshot under one Redis key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to redisURL and checks the connection.
func NewRedisStore(redisURL, name string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("persist: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("persist: connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(client, name), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, name string) *RedisStore {
	return &RedisStore{client: client, key: redisPrefix + name}
}

// Key returns the Redis key the snapshot lives under.
func (r *RedisStore) Key() string { return r.key }

func (r *RedisStore) Load(ctx context.Context) (Snapshot, bool, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("persist: redis load: %w", err)
	}
	s, err := Import(data)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("persist: redis load: %w", err)
	}
	return s, true, nil
}

func (r *RedisStore) Save(ctx context.Context, s Snapshot) error {
	data, err := encode(s)
	if err != nil {
		return fmt.Errorf("persist: redis save: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("persist: redis save: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error { return r.client.Close() }
