package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("skipping redis test: REDIS_TEST_ADDR not set")
	}
	c, err := NewClient(addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_AllowSetsWindowExpiry(t *testing.T) {
	ctx := context.Background()
	c := redisClient(t)
	key := "test:login:" + uuid.NewString()
	t.Cleanup(func() { _ = c.Delete(context.Background(), key) })

	for i := 0; i < 2; i++ {
		ok, err := c.Allow(ctx, key, 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := c.Allow(ctx, key, 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := c.rdb.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestClient_AllowWindowResets(t *testing.T) {
	ctx := context.Background()
	c := redisClient(t)
	key := "test:login:" + uuid.NewString()
	t.Cleanup(func() { _ = c.Delete(context.Background(), key) })

	ok, err := c.Allow(ctx, key, 1, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.Allow(ctx, key, 1, time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	time.Sleep(1100 * time.Millisecond)
	ok, err = c.Allow(ctx, key, 1, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
