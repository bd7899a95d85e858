package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle-tool-backend/internal/features/raffle/models"
	"raffle-tool-backend/internal/features/raffle/repository"
	"raffle-tool-backend/internal/features/raffle/repository/repotest"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestStore(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.Repository {
		return openStore(t, filepath.Join(t.TempDir(), "raffles.db"))
	})
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raffles.db")
	ctx := context.Background()

	first, err := Open(path)
	require.NoError(t, err)
	raffle := &models.Raffle{Name: "Reopen", Creator: "ops"}
	require.NoError(t, first.CreateRaffle(ctx, raffle))
	p := &models.Participant{RaffleID: raffle.ID, Name: "Ines", ValidTickets: 1}
	require.NoError(t, first.AddParticipant(ctx, p))
	applied, err := first.ApplyLossMutation(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, applied)
	require.NoError(t, first.Close())

	second := openStore(t, path)
	got, err := second.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ValidTickets)
	assert.Equal(t, 1, got.InvalidTickets)
	assert.Equal(t, models.StatusDisqualified, got.Status)

	gotRaffle, err := second.GetRaffle(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, raffle.CreatedAt.UnixMilli(), gotRaffle.CreatedAt.UnixMilli())
}

func TestStoreTrimsNames(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "raffles.db"))
	ctx := context.Background()

	raffle := &models.Raffle{Name: "  Padded  "}
	require.NoError(t, store.CreateRaffle(ctx, raffle))
	assert.Equal(t, "Padded", raffle.Name)

	assert.ErrorIs(t, store.CreateRaffle(ctx, &models.Raffle{Name: ""}), models.ErrEmptyName)
}
