package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
}

func newTestCache(t *testing.T) *CacheService {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = miniredis.RunT(t).Addr()
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 14})
	require.NoError(t, client.FlushDB(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheService(client, time.Minute)
}

func TestRaffleKey(t *testing.T) {
	assert.Equal(t, "cache:raffle:42", RaffleKey(42))
}

func TestGetMiss(t *testing.T) {
	c := newTestCache(t)

	var got item
	assert.ErrorIs(t, c.Get(context.Background(), "absent", &got), ErrMiss)
}

func TestGetOrSetLoadsOnce(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	loads := 0
	load := func() (interface{}, error) {
		loads++
		return item{Name: "spring"}, nil
	}

	var first item
	hit, err := c.GetOrSet(ctx, RaffleKey(1), &first, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "spring", first.Name)

	var second item
	hit, err = c.GetOrSet(ctx, RaffleKey(1), &second, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "spring", second.Name)
	assert.Equal(t, 1, loads)

	require.NoError(t, c.Delete(ctx, RaffleKey(1)))
	var third item
	assert.ErrorIs(t, c.Get(ctx, RaffleKey(1), &third), ErrMiss)
}

func TestGetOrSetPropagatesLoadError(t *testing.T) {
	c := newTestCache(t)
	boom := errors.New("boom")

	var got item
	_, err := c.GetOrSet(context.Background(), "k", &got, func() (interface{}, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}
