package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"raffle-tool-backend/internal/features/raffle/repository"
	"raffle-tool-backend/internal/features/raffle/repository/repotest"
	platformpostgres "raffle-tool-backend/internal/platform/postgres"
)

// TestPostgresRepository runs against a disposable database named by
// TEST_POSTGRES_DSN. The tables are truncated before every subtest.
func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	repotest.Run(t, func(t *testing.T) repository.Repository {
		ctx := context.Background()
		client, err := platformpostgres.OpenDSN(ctx, dsn)
		require.NoError(t, err)

		repo, err := NewPostgresRepository(ctx, client.GetDB())
		require.NoError(t, err)
		_, err = client.GetDB().ExecContext(ctx, "TRUNCATE participants, raffles RESTART IDENTITY CASCADE")
		require.NoError(t, err)

		t.Cleanup(func() { _ = repo.Close() })
		return repo
	})
}
