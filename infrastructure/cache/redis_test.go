package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCache_GetSet(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewRedisCache(client, "evalstats")

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "results-1", []byte(`{"a":1}`), 0))
	assert.True(t, mr.Exists("evalstats:results-1"), "keys should be stored under the prefix")

	got, ok, err := c.Get(ctx, "results-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"a":1}`), got)
}

func TestRedisCache_Expiration(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewRedisCache(client, "evalstats")

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_ClearKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewRedisCache(client, "evalstats")

	require.NoError(t, mr.Set("other:key", "keep"))
	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, key, []byte(key), 0))
	}
	require.NoError(t, c.Delete(ctx, "a"))

	require.NoError(t, c.Clear(ctx))
	assert.False(t, mr.Exists("evalstats:b"))
	assert.False(t, mr.Exists("evalstats:c"))
	assert.True(t, mr.Exists("other:key"))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(context.Background(), RedisOptions{Addr: addr})
	assert.Error(t, err)
}
