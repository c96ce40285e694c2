package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jo-hoe/inventory/internal/backend/database"
	"github.com/redis/go-redis/v9"
)

const (
	TypeNone  = "none"
	TypeRedis = "redis"

	listKeyPrefix    = "resources:list"
	generationSuffix = "resources:gen"
)

// ListCache holds a snapshot of the complete resource list per generation.
// Invalidate advances the generation, so a snapshot read before a mutation is
// stored under a generation that is never loaded again.
type ListCache interface {
	// Generation returns the current generation; it must be read before the snapshot is built.
	Generation(ctx context.Context) (int64, error)
	// Load returns the snapshot of the given generation; ok is false on a cache miss.
	Load(ctx context.Context, generation int64) (resources []*database.Resource, ok bool, err error)
	Store(ctx context.Context, generation int64, resources []*database.Resource) error
	Invalidate(ctx context.Context) error
	Close() error
}

func NewListCache(cacheType, namespace, address, password string, db int, ttl time.Duration) (ListCache, error) {
	switch cacheType {
	case "", TypeNone:
		return NoopListCache{}, nil
	case TypeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
			DB:       db,
		})
		slog.Info("list cache initialized", "type", cacheType, "address", address)
		return NewRedisListCache(client, namespace, ttl), nil
	default:
		return nil, fmt.Errorf("unsupported cache: %s", cacheType)
	}
}

// NoopListCache never holds a snapshot.
type NoopListCache struct{}

func (NoopListCache) Generation(context.Context) (int64, error) { return 0, nil }
func (NoopListCache) Load(context.Context, int64) ([]*database.Resource, bool, error) {
	return nil, false, nil
}
func (NoopListCache) Store(context.Context, int64, []*database.Resource) error { return nil }
func (NoopListCache) Invalidate(context.Context) error                        { return nil }
func (NoopListCache) Close() error                                            { return nil }

// RedisListCache stores the snapshot as JSON under a namespaced key.
type RedisListCache struct {
	Redis     redis.UniversalClient
	Namespace string
	TTL       time.Duration
}

func NewRedisListCache(client redis.UniversalClient, namespace string, ttl time.Duration) *RedisListCache {
	return &RedisListCache{
		Redis:     client,
		Namespace: namespace,
		TTL:       ttl,
	}
}

func (c *RedisListCache) generationKey() string {
	return c.Namespace + ":" + generationSuffix
}

func (c *RedisListCache) listKey(generation int64) string {
	return fmt.Sprintf("%s:%s:%d", c.Namespace, listKeyPrefix, generation)
}

func (c *RedisListCache) Generation(ctx context.Context) (int64, error) {
	generation, err := c.Redis.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return generation, err
}

func (c *RedisListCache) Load(ctx context.Context, generation int64) ([]*database.Resource, bool, error) {
	data, err := c.Redis.Get(ctx, c.listKey(generation)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var resources []*database.Resource
	if err := json.Unmarshal(data, &resources); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached list: %w", err)
	}
	return resources, true, nil
}

func (c *RedisListCache) Store(ctx context.Context, generation int64, resources []*database.Resource) error {
	if resources == nil {
		resources = []*database.Resource{}
	}
	data, err := json.Marshal(resources)
	if err != nil {
		return fmt.Errorf("failed to encode list: %w", err)
	}
	return c.Redis.Set(ctx, c.listKey(generation), data, c.TTL).Err()
}

// Invalidate advances the generation; snapshots of older generations expire with their TTL.
func (c *RedisListCache) Invalidate(ctx context.Context) error {
	return c.Redis.Incr(ctx, c.generationKey()).Err()
}

func (c *RedisListCache) Close() error {
	return c.Redis.Close()
}
