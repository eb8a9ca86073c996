package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/astrocore/internal/domain/model"
)

const defaultRedisPrefix = "astro:signs:"

// RedisOption configures a redis cache.
type RedisOption func(*redisCache)

// WithPrefix namespaces every key.
func WithPrefix(prefix string) RedisOption {
	return func(c *redisCache) { c.prefix = prefix }
}

// WithRedisTTL sets the key expiry. Zero means no expiry.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(c *redisCache) {
		if ttl >= 0 {
			c.ttl = ttl
		}
	}
}

type redisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedis wraps a go-redis client. Triads are stored as JSON.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) Cache {
	c := &redisCache{client: client, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DialRedis connects to addr and pings it once.
func DialRedis(ctx context.Context, addr string, db int, opts ...RedisOption) (Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", ErrCacheUnavailable, addr, err)
	}
	return NewRedis(client, opts...), nil
}

func (c *redisCache) fullKey(key string) string {
	return c.prefix + key
}

func (c *redisCache) Get(ctx context.Context, key string) (*model.SignTriad, bool, error) {
	data, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get: %w", ErrCacheUnavailable, err)
	}
	var t model.SignTriad
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return &t, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, t *model.SignTriad) error {
	if t == nil {
		return nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	if err := c.client.Set(ctx, c.fullKey(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %w", ErrCacheUnavailable, err)
	}
	return nil
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
