package auth_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/infrastructure/auth"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keyspace answers SET, EXISTS and GET from a map so the client never dials
type keyspace struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
	fail   error
}

func newKeyspace() *keyspace {
	return &keyspace{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (k *keyspace) DialHook(next redis.DialHook) redis.DialHook { return next }

func (k *keyspace) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (k *keyspace) ProcessHook(_ redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		k.mu.Lock()
		defer k.mu.Unlock()
		if k.fail != nil {
			cmd.SetErr(k.fail)
			return k.fail
		}

		args := cmd.Args()
		key := fmt.Sprint(args[1])
		switch c := cmd.(type) {
		case *redis.StatusCmd:
			k.values[key] = fmt.Sprint(args[2])
			if len(args) == 5 {
				n, _ := strconv.ParseInt(fmt.Sprint(args[4]), 10, 64)
				if args[3] == "ex" {
					k.ttls[key] = time.Duration(n) * time.Second
				} else {
					k.ttls[key] = time.Duration(n) * time.Millisecond
				}
			}
			c.SetVal("OK")
		case *redis.IntCmd:
			var n int64
			for _, a := range args[1:] {
				if _, ok := k.values[fmt.Sprint(a)]; ok {
					n++
				}
			}
			c.SetVal(n)
		case *redis.StringCmd:
			v, ok := k.values[key]
			if !ok {
				c.SetErr(redis.Nil)
				return redis.Nil
			}
			c.SetVal(v)
		default:
			return fmt.Errorf("unexpected command %v", args[0])
		}
		return nil
	}
}

func newRedisBlacklist(t *testing.T) (*auth.RedisTokenBlacklist, *keyspace) {
	t.Helper()
	ks := newKeyspace()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(ks)
	t.Cleanup(func() { _ = client.Close() })
	return auth.NewRedisTokenBlacklist(client), ks
}

func TestRedisTokenBlacklist_RevokedSession(t *testing.T) {
	blacklist, ks := newRedisBlacklist(t)
	ctx := context.Background()
	jti := uuid.NewString()

	revoked, err := blacklist.IsBlacklisted(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, blacklist.AddToBlacklist(ctx, jti, 15*time.Minute))

	key := "grocer:token:blacklist:jti:" + jti
	assert.Equal(t, "1", ks.values[key])
	assert.Equal(t, 15*time.Minute, ks.ttls[key], "entry lives only as long as the access token")

	revoked, err = blacklist.IsBlacklisted(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsBlacklisted(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisTokenBlacklist_SuspendedCustomer(t *testing.T) {
	blacklist, ks := newRedisBlacklist(t)
	ctx := context.Background()
	customer := uuid.NewString()
	issuedAt := time.Now().Add(-30 * time.Minute)

	invalidated, err := blacklist.IsUserTokenInvalidated(ctx, customer, issuedAt)
	require.NoError(t, err)
	assert.False(t, invalidated, "no mark means nothing is revoked")

	require.NoError(t, blacklist.AddUserTokensToBlacklist(ctx, customer, 7*24*time.Hour))
	key := "grocer:token:blacklist:user:" + customer
	require.Contains(t, ks.values, key)
	assert.Equal(t, 7*24*time.Hour, ks.ttls[key])

	invalidated, err = blacklist.IsUserTokenInvalidated(ctx, customer, issuedAt)
	require.NoError(t, err)
	assert.True(t, invalidated)

	invalidated, err = blacklist.IsUserTokenInvalidated(ctx, customer, time.Now().Add(2*time.Second))
	require.NoError(t, err)
	assert.False(t, invalidated, "sessions opened after the mark stay valid")

	invalidated, err = blacklist.IsUserTokenInvalidated(ctx, uuid.NewString(), issuedAt)
	require.NoError(t, err)
	assert.False(t, invalidated)
}

func TestRedisTokenBlacklist_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unreadable mark", func(t *testing.T) {
		blacklist, ks := newRedisBlacklist(t)
		customer := uuid.NewString()
		ks.values["grocer:token:blacklist:user:"+customer] = "yesterday"

		_, err := blacklist.IsUserTokenInvalidated(ctx, customer, time.Now())
		assert.ErrorContains(t, err, "failed to parse invalidation timestamp")
	})

	t.Run("redis down", func(t *testing.T) {
		blacklist, ks := newRedisBlacklist(t)
		down := errors.New("connection refused")
		ks.fail = down

		err := blacklist.AddToBlacklist(ctx, uuid.NewString(), time.Minute)
		assert.ErrorIs(t, err, down)

		_, err = blacklist.IsBlacklisted(ctx, uuid.NewString())
		assert.ErrorContains(t, err, "failed to check token blacklist")

		err = blacklist.AddUserTokensToBlacklist(ctx, uuid.NewString(), time.Hour)
		assert.ErrorContains(t, err, "failed to invalidate user tokens")

		_, err = blacklist.IsUserTokenInvalidated(ctx, uuid.NewString(), time.Now())
		assert.ErrorIs(t, err, down)
	})
}

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()

	t.Run("logout revokes one session", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		phone, laptop := uuid.NewString(), uuid.NewString()

		require.NoError(t, blacklist.AddToBlacklist(ctx, phone, time.Hour))

		revoked, err := blacklist.IsBlacklisted(ctx, phone)
		require.NoError(t, err)
		assert.True(t, revoked)

		revoked, err = blacklist.IsBlacklisted(ctx, laptop)
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("entry lapses with the token", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		jti := uuid.NewString()

		require.NoError(t, blacklist.AddToBlacklist(ctx, jti, time.Millisecond))
		assert.Eventually(t, func() bool {
			revoked, err := blacklist.IsBlacklisted(ctx, jti)
			return err == nil && !revoked
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("password change revokes older sessions", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		staff := uuid.NewString()
		before := time.Now().Add(-time.Hour)

		require.NoError(t, blacklist.AddUserTokensToBlacklist(ctx, staff, time.Hour))

		invalidated, err := blacklist.IsUserTokenInvalidated(ctx, staff, before)
		require.NoError(t, err)
		assert.True(t, invalidated)

		invalidated, err = blacklist.IsUserTokenInvalidated(ctx, staff, time.Now().Add(time.Second))
		require.NoError(t, err)
		assert.False(t, invalidated)

		invalidated, err = blacklist.IsUserTokenInvalidated(ctx, uuid.NewString(), before)
		require.NoError(t, err)
		assert.False(t, invalidated)
	})
}
