package redis

import (
	"context"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"raffle-tool-backend/internal/features/raffle/repository"
	"raffle-tool-backend/internal/features/raffle/repository/repotest"
	platformredis "raffle-tool-backend/internal/platform/redis"
)

// redisAddr returns TEST_REDIS_ADDR when set, otherwise an in-process
// miniredis server scoped to t.
func redisAddr(t *testing.T) string {
	t.Helper()
	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	return miniredis.RunT(t).Addr()
}

func TestRedisRepository(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.Repository {
		ctx := context.Background()
		client, err := platformredis.Open(ctx, redisAddr(t), os.Getenv("TEST_REDIS_PASSWORD"), 15)
		require.NoError(t, err)
		require.NoError(t, client.FlushDB(ctx).Err())

		repo := NewRedisRepository(client.Client)
		t.Cleanup(func() { _ = repo.Close() })
		return repo
	})
}

func TestLossScriptStopsAtZero(t *testing.T) {
	ctx := context.Background()
	client, err := platformredis.Open(ctx, redisAddr(t), os.Getenv("TEST_REDIS_PASSWORD"), 15)
	require.NoError(t, err)
	require.NoError(t, client.FlushDB(ctx).Err())
	repo := NewRedisRepository(client.Client)
	t.Cleanup(func() { _ = repo.Close() })

	// hash written by hand, the script must only trust valid_tickets
	require.NoError(t, client.HSet(ctx, "participant:77", map[string]interface{}{
		"raffle_id":       1,
		"name":            "Manual",
		"valid_tickets":   1,
		"invalid_tickets": 4,
		"status":          "Participating",
	}).Err())

	applied, err := repo.ApplyLossMutation(ctx, 77)
	require.NoError(t, err)
	require.True(t, applied)

	fields, err := client.HGetAll(ctx, "participant:77").Result()
	require.NoError(t, err)
	require.Equal(t, "0", fields["valid_tickets"])
	require.Equal(t, "5", fields["invalid_tickets"])
	require.Equal(t, "Disqualified", fields["status"])

	applied, err = repo.ApplyLossMutation(ctx, 77)
	require.NoError(t, err)
	require.False(t, applied)
}
