package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) (CacheService, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, "survey:", slog.New(slog.NewTextHandler(io.Discard, nil))), server
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", entry{Name: "a", Count: 1}, time.Minute))
	assert.True(t, server.Exists("survey:a"))

	var got entry
	require.NoError(t, cache.Get(ctx, "a", &got))
	assert.Equal(t, entry{Name: "a", Count: 1}, got)

	require.NoError(t, cache.Delete(ctx, "a"))
	assert.ErrorIs(t, cache.Get(ctx, "a", &got), ErrCacheMiss)
}

func TestRedisCache_DeletePattern(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "claim:1", 1, time.Minute))
	require.NoError(t, cache.Set(ctx, "claim:2", 2, time.Minute))
	require.NoError(t, cache.Set(ctx, "other", 3, time.Minute))

	require.NoError(t, cache.DeletePattern(ctx, "claim:*"))
	assert.False(t, server.Exists("survey:claim:1"))
	assert.False(t, server.Exists("survey:claim:2"))
	assert.True(t, server.Exists("survey:other"))

	assert.NoError(t, cache.DeletePattern(ctx, "missing:*"))
}

func TestRedisCache_SetIfAbsent(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()

	ok, err := cache.SetIfAbsent(ctx, "claim:p1", "worker-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.SetIfAbsent(ctx, "claim:p1", "worker-2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	server.FastForward(2 * time.Minute)
	ok, err = cache.SetIfAbsent(ctx, "claim:p1", "worker-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "claim expires with its ttl")
}
