package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle-tool-backend/internal/features/raffle/models"
	"raffle-tool-backend/internal/features/raffle/repository"
	"raffle-tool-backend/internal/features/raffle/repository/repotest"
)

func TestStore(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.Repository {
		return NewStore()
	})
}

func TestStoreReturnsCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	raffle := &models.Raffle{Name: "Copies"}
	require.NoError(t, store.CreateRaffle(ctx, raffle))
	p := &models.Participant{RaffleID: raffle.ID, Name: "Gil", ValidTickets: 3}
	require.NoError(t, store.AddParticipant(ctx, p))

	got, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	got.ValidTickets = 0

	again, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, again.ValidTickets)
}

func TestStoreRejectsInvalidInput(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.CreateRaffle(ctx, &models.Raffle{Name: "  "}), models.ErrEmptyName)

	raffle := &models.Raffle{Name: "Valid"}
	require.NoError(t, store.CreateRaffle(ctx, raffle))
	err := store.AddParticipant(ctx, &models.Participant{RaffleID: raffle.ID, Name: "Hugo", ValidTickets: -1})
	assert.ErrorIs(t, err, models.ErrInvalidTicketCount)
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.ListParticipating(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.ApplyLossMutation(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
