package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T, ttl time.Duration) (*ScoreCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := New(context.Background(), "redis://"+mr.Addr(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestScoreCacheRoundTrip(t *testing.T) {
	c, mr := setupCache(t, time.Hour)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "abc", 71.25))

	v, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 71.25, v)

	assert.True(t, mr.Exists(keyPrefix+"abc"))
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"abc"))
}

func TestScoreCacheExpires(t *testing.T) {
	c, mr := setupCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 10))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScoreCacheCorruptValue(t *testing.T) {
	c, mr := setupCache(t, 0)

	require.NoError(t, mr.Set(keyPrefix+"bad", "not-a-number"))

	_, ok, err := c.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestScoreCacheDefaultTTL(t *testing.T) {
	c := NewWithClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}), 0)
	defer c.Close()

	assert.Equal(t, defaultTTL, c.ttl)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(context.Background(), "://nope", time.Minute)
	assert.Error(t, err)
}

func TestNewFailsWhenUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = New(ctx, "redis://"+addr, time.Minute)
	assert.Error(t, err)
}
