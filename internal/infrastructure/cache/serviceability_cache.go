package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisServiceabilityCache stores serviceability answers as JSON.
// Keys embed a generation number; Invalidate bumps the generation so every
// older answer becomes unreachable and ages out through its TTL.
type RedisServiceabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisServiceabilityCache creates a cache on an existing client
func NewRedisServiceabilityCache(client *redis.Client, ttl time.Duration) *RedisServiceabilityCache {
	return &RedisServiceabilityCache{
		client: client,
		ttl:    ttl,
		prefix: KeyPrefix + "serviceability:",
	}
}

func (c *RedisServiceabilityCache) generationKey() string {
	return c.prefix + "generation"
}

func (c *RedisServiceabilityCache) key(ctx context.Context, key string) (string, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s%d:%s", c.prefix, gen, key), nil
}

// Get decodes a cached answer into dest. It reports false on a miss.
func (c *RedisServiceabilityCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	k, err := c.key(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read cache generation: %w", err)
	}
	raw, err := c.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read serviceability cache: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode serviceability cache entry: %w", err)
	}
	return true, nil
}

// Set stores an answer
func (c *RedisServiceabilityCache) Set(ctx context.Context, key string, value any) error {
	k, err := c.key(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read cache generation: %w", err)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, k, raw, c.ttl).Err()
}

// Invalidate drops every cached answer
func (c *RedisServiceabilityCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.generationKey()).Err()
}

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// InMemoryServiceabilityCache is the single-process variant used when redis is disabled
type InMemoryServiceabilityCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryServiceabilityCache creates an empty cache
func NewInMemoryServiceabilityCache(ttl time.Duration) *InMemoryServiceabilityCache {
	return &InMemoryServiceabilityCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get decodes a cached answer into dest. It reports false on a miss.
func (c *InMemoryServiceabilityCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expiresAt) {
		return false, nil
	}
	if err := json.Unmarshal(e.raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores an answer
func (c *InMemoryServiceabilityCache) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{raw: raw, expiresAt: c.now().Add(c.ttl)}
	return nil
}

// Invalidate drops every cached answer
func (c *InMemoryServiceabilityCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	return nil
}
