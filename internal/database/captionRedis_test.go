package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisURLCache(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewRedisURLCache(client, time.Hour)
	ctx := context.Background()

	url, ok, err := c.GetURL(ctx, "fingerprint")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, url)

	require.NoError(t, c.SetURL(ctx, "fingerprint", "https://storage.googleapis.com/bucket/a.png"))
	assert.True(t, mr.Exists("caption:fingerprint"))
	assert.Equal(t, time.Hour, mr.TTL("caption:fingerprint"))

	url, ok, err = c.GetURL(ctx, "fingerprint")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://storage.googleapis.com/bucket/a.png", url)

	mr.FastForward(2 * time.Hour)
	_, ok, err = c.GetURL(ctx, "fingerprint")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisURLCacheConnectionError(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewRedisURLCache(client, time.Hour)
	mr.Close()

	_, ok, err := c.GetURL(context.Background(), "fingerprint")
	assert.Error(t, err)
	assert.False(t, ok)
}
