package cache

import (
	"context"
	"time"

	"github.com/grocer/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Locker hands out named mutual exclusion locks
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// ServiceabilityCache stores serviceability answers
type ServiceabilityCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context) error
}

// IdempotencyStore remembers which events were already handled
type IdempotencyStore interface {
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	// Forget drops a mark so the event can be handled again
	Forget(ctx context.Context, eventID string) error
}

// Provider bundles the cache-backed components. Every component falls back
// to its in-process variant when redis is disabled or unreachable.
type Provider struct {
	Client         *redis.Client
	Locker         Locker
	Serviceability ServiceabilityCache
	Idempotency    IdempotencyStore
}

// NewProvider builds the cache components from configuration
func NewProvider(redisCfg config.RedisConfig, checkoutCfg config.CheckoutConfig, logger *zap.Logger) *Provider {
	if redisCfg.Enabled {
		client, err := NewRedisClient(redisCfg)
		if err == nil {
			logger.Info("using Redis for locks and caches", zap.String("addr", redisCfg.Addr()))
			return &Provider{
				Client:         client,
				Locker:         NewRedisLocker(client),
				Serviceability: NewRedisServiceabilityCache(client, checkoutCfg.ServiceabilityCacheTTL),
				Idempotency:    NewRedisIdempotencyStore(client),
			}
		}
		logger.Warn("Redis unavailable, falling back to in-memory locks and caches. "+
			"Coupon redemption is only serialized within this instance.",
			zap.Error(err),
		)
	}

	return &Provider{
		Locker:         NewInMemoryLocker(),
		Serviceability: NewInMemoryServiceabilityCache(checkoutCfg.ServiceabilityCacheTTL),
		Idempotency:    NewInMemoryIdempotencyStore(),
	}
}

// Close releases the redis client if one was opened
func (p *Provider) Close() error {
	if p.Client == nil {
		return nil
	}
	return p.Client.Close()
}
