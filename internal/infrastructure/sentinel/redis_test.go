package sentinel

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), RedisConfig{
		Addr:      mr.Addr(),
		KeyPrefix: "test:sentinel:",
		TTL:       ttl,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore(t *testing.T) {
	store, _ := newMiniRedisStore(t, 0)
	exerciseStore(t, store)
}

func TestRedisStore_KeyPrefixAndContent(t *testing.T) {
	store, mr := newMiniRedisStore(t, 0)

	require.NoError(t, store.Put(context.Background(), testKey, []byte("%PDF")))

	got, err := mr.Get("test:sentinel:" + testKey)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", got)
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := newMiniRedisStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testKey, nil))
	assert.Equal(t, time.Hour, mr.TTL("test:sentinel:"+testKey))

	mr.FastForward(time.Hour + time.Second)

	has, err := store.Has(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRedisStore_DefaultPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreWithClient(client, "", 0)
	defer store.Close()

	require.NoError(t, store.Put(context.Background(), testKey, []byte("x")))
	assert.True(t, mr.Exists(defaultRedisKeyPrefix+testKey))
	assert.Same(t, client, store.Client())
}

func TestRedisStore_UnreachableIsAnError(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestRedisStore_HasFailsWhenServerGone(t *testing.T) {
	store, mr := newMiniRedisStore(t, 0)
	mr.Close()

	has, err := store.Has(context.Background(), testKey)
	assert.Error(t, err)
	assert.False(t, has)
}
