package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewRedisCache(nil, "", 0, false)
	require.NoError(t, err)

	assert.False(t, c.Enabled())
	assert.NoError(t, c.SetTaskList(ctx, "tasks", []byte("[]"), time.Minute))
	assert.NoError(t, c.InvalidateTaskList(ctx, "tasks"))
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())

	_, err = c.GetTaskList(ctx, "tasks")
	assert.ErrorIs(t, err, ErrCacheDisabled)
}

func TestNewRedisCache_RequiresURLs(t *testing.T) {
	_, err := NewRedisCache(nil, "", 0, true)
	assert.Error(t, err)
}

func TestShardSelection(t *testing.T) {
	clients := []redis.Cmdable{
		redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}),
		redis.NewClient(&redis.Options{Addr: "127.0.0.1:2"}),
		redis.NewClient(&redis.Options{Addr: "127.0.0.1:3"}),
	}
	c := NewShardedCache(clients).(*redisCache)
	defer c.Close()

	key := taskListKey("tasks")
	first := c.getShardIndex(key)
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, len(clients))
	assert.Equal(t, first, c.getShardIndex(key))
	assert.Same(t, clients[first], c.getClient(key))
}

func TestParseRedisURLs(t *testing.T) {
	assert.Equal(t, []string{}, ParseRedisURLs(""))
	assert.Equal(t, []string{"a:6379", "b:6379"}, ParseRedisURLs(" a:6379 , ,b:6379"))
}

func TestRedisCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("TASKTANGO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TASKTANGO_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	c, err := NewRedisCache([]string{addr}, "", 0, true)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.SetTaskList(ctx, "cache-test", []byte(`[{"id":"a"}]`), time.Minute))
	got, err := c.GetTaskList(ctx, "cache-test")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(got))

	require.NoError(t, c.InvalidateTaskList(ctx, "cache-test"))
	_, err = c.GetTaskList(ctx, "cache-test")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
