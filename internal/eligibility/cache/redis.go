// Package cache is the Redis-backed decision cache. Repeat checks of an
// identical record against an identical ruleset version are served from
// here instead of re-evaluating.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"patra/internal/eligibility/models"
)

// RedisCache caches decisions keyed by scheme, ruleset version and record
// fingerprint. Entries expire; the cache is an optimization, never the
// source of truth.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache constructs a Redis-backed decision cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the cached decision for key, or (nil, nil) on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*models.CachedDecision, error) {
	body, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var cached models.CachedDecision
	if err := json.Unmarshal(body, &cached); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &cached, nil
}

// Set stores a decision under key with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, cached *models.CachedDecision, ttl time.Duration) error {
	body, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, body, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
