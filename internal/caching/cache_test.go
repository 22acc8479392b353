package caching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name string
	Cost int64
}

func TestUseCacheLoadsOnce(t *testing.T) {
	c := NewLocal(100, time.Minute)
	ctx := context.Background()

	calls := 0
	load := func() ([]entry, error) {
		calls++
		return []entry{{Name: "Apple", Cost: 5}}, nil
	}

	first, err := UseCache(ctx, c, "shop", time.Minute, load)
	require.NoError(t, err)
	second, err := UseCache(ctx, c, "shop", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestUseCacheDoesNotStoreFailures(t *testing.T) {
	c := NewLocal(100, time.Minute)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := UseCache(ctx, c, "k", time.Minute, func() (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)

	v, err := UseCache(ctx, c, "k", time.Minute, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestDeleteForcesReload(t *testing.T) {
	c := NewLocal(100, time.Minute)
	ctx := context.Background()

	_, err := UseCache(ctx, c, "k", time.Minute, func() (int, error) { return 1, nil })
	require.NoError(t, err)
	require.NoError(t, c.Delete(ctx, "k"))

	v, err := UseCache(ctx, c, "k", time.Minute, func() (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestUseCacheLoadsWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	c := NewCacheRedis(client, false)

	calls := 0
	got, err := UseCache(context.Background(), c, "shop", time.Minute, func() ([]entry, error) {
		calls++
		return []entry{{Name: "Apple", Cost: 5}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []entry{{Name: "Apple", Cost: 5}}, got)
}
