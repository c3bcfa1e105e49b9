package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL constants
const (
	TTLTenant  = 1 * time.Minute // tenant lookup; short so lifecycle changes surface quickly
	TTLDefault = 5 * time.Minute
)

// Key prefixes
const (
	PrefixTenant = "tenant:subdomain:"
)

// ErrCacheMiss is returned when a key is not present
var ErrCacheMiss = errors.New("cache miss")

// Service is the Redis-backed cache used for hot tenant lookups
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	GetTenant(ctx context.Context, subdomain string, dest interface{}) error
	SetTenant(ctx context.Context, subdomain string, tenant interface{}) error
	InvalidateTenant(ctx context.Context, subdomain string) error

	IsAvailable() bool
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a cache service. A nil client yields a no-op cache
// so callers never have to branch on Redis availability.
func NewService(client *redis.Client) Service {
	if client == nil {
		return &noopCache{}
	}
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = TTLDefault
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) GetTenant(ctx context.Context, subdomain string, dest interface{}) error {
	return c.Get(ctx, PrefixTenant+subdomain, dest)
}

func (c *redisCache) SetTenant(ctx context.Context, subdomain string, tenant interface{}) error {
	return c.Set(ctx, PrefixTenant+subdomain, tenant, TTLTenant)
}

func (c *redisCache) InvalidateTenant(ctx context.Context, subdomain string) error {
	return c.Delete(ctx, PrefixTenant+subdomain)
}

func (c *redisCache) IsAvailable() bool { return true }

// noopCache satisfies Service when Redis is not configured
type noopCache struct{}

func (n *noopCache) Get(context.Context, string, interface{}) error { return ErrCacheMiss }
func (n *noopCache) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (n *noopCache) Delete(context.Context, ...string) error              { return nil }
func (n *noopCache) GetTenant(context.Context, string, interface{}) error { return ErrCacheMiss }
func (n *noopCache) SetTenant(context.Context, string, interface{}) error { return nil }
func (n *noopCache) InvalidateTenant(context.Context, string) error       { return nil }
func (n *noopCache) IsAvailable() bool                                    { return false }
