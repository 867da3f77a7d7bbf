package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCache_CheckAndSet_NewEvent(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewEventCache(client)
	ctx := context.Background()

	fresh, err := cache.CheckAndSet(ctx, "stripe:evt_1abc", 48*time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh, "first delivery should be fresh")
}

func TestEventCache_CheckAndSet_DuplicateEvent(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewEventCache(client)
	ctx := context.Background()

	fresh, err := cache.CheckAndSet(ctx, "stripe:evt_dup", 48*time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = cache.CheckAndSet(ctx, "stripe:evt_dup", 48*time.Hour)
	require.NoError(t, err)
	assert.False(t, fresh, "redelivery should not be fresh")
}

func TestEventCache_CheckAndSet_ProvidersAreScoped(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewEventCache(client)
	ctx := context.Background()

	fresh, err := cache.CheckAndSet(ctx, "stripe:evt_shared", 48*time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh)

	// Same raw event id from a different provider is a different key.
	fresh, err = cache.CheckAndSet(ctx, "paypal:evt_shared", 48*time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestEventCache_Clear_MakesKeyFreshAgain(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewEventCache(client)
	ctx := context.Background()

	fresh, err := cache.CheckAndSet(ctx, "stripe:evt_failed", 48*time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh)

	// A delivery whose effects never committed drops its key so the
	// provider's retry is processed normally.
	require.NoError(t, cache.Clear(ctx, "stripe:evt_failed"))

	fresh, err = cache.CheckAndSet(ctx, "stripe:evt_failed", 48*time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh, "retry after clear should be fresh")
}

func TestEventCache_Clear_UnknownKey(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewEventCache(client)

	require.NoError(t, cache.Clear(context.Background(), "stripe:evt_never_set"))
}

func TestEventCache_CheckAndSet_ExpiredEntry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewEventCache(client)
	ctx := context.Background()

	fresh, err := cache.CheckAndSet(ctx, "stripe:evt_old", time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh)

	s.FastForward(2 * time.Hour)

	// After expiry the cache forgets; the durable DB guard still holds.
	fresh, err = cache.CheckAndSet(ctx, "stripe:evt_old", time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh)
}
