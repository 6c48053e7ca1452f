package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/ksuid"
)

// ErrLockNotAcquired is returned when a lock stays held by someone else
// for the whole acquisition window
var ErrLockNotAcquired = errors.New("lock not acquired")

// UnlockFunc releases a held lock
type UnlockFunc func(ctx context.Context) error

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker hands out short-lived mutual exclusion locks backed by SET NX
type RedisLocker struct {
	client   *redis.Client
	prefix   string
	attempts uint
	delay    time.Duration
}

// NewRedisLocker creates a locker on an existing client
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client:   client,
		prefix:   KeyPrefix + "lock:",
		attempts: 20,
		delay:    50 * time.Millisecond,
	}
}

// Lock blocks until the key is acquired, the retry budget runs out or ctx is done.
// The lock expires after ttl even if never released.
func (l *RedisLocker) Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error) {
	token := ksuid.New().String()
	fullKey := l.prefix + key

	err := retry.Do(
		func() error {
			ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
			if err != nil {
				return retry.Unrecoverable(err)
			}
			if !ok {
				return ErrLockNotAcquired
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(l.attempts),
		retry.Delay(l.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if errors.Is(err, ErrLockNotAcquired) {
			return nil, ErrLockNotAcquired
		}
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err()
	}, nil
}

// InMemoryLocker serializes callers inside a single process
type InMemoryLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewInMemoryLocker creates an in-process locker
func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{locks: make(map[string]chan struct{})}
}

// Lock blocks until the key is free or ctx is done. ttl is ignored.
func (l *InMemoryLocker) Lock(ctx context.Context, key string, _ time.Duration) (UnlockFunc, error) {
	for {
		l.mu.Lock()
		held, ok := l.locks[key]
		if !ok {
			ch := make(chan struct{})
			l.locks[key] = ch
			l.mu.Unlock()

			var once sync.Once
			return func(context.Context) error {
				once.Do(func() {
					l.mu.Lock()
					delete(l.locks, key)
					l.mu.Unlock()
					close(ch)
				})
				return nil
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-held:
		case <-ctx.Done():
			return nil, ErrLockNotAcquired
		}
	}
}
