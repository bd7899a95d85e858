// Package repotest holds the behaviour every repository backend must share.
package repotest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle-tool-backend/internal/features/raffle/models"
	"raffle-tool-backend/internal/features/raffle/repository"
)

// Factory returns an empty repository. Cleanup is registered on t.
type Factory func(t *testing.T) repository.Repository

// Run executes the shared repository suite against a backend.
func Run(t *testing.T, newRepo Factory) {
	t.Run("raffle lifecycle", func(t *testing.T) { testRaffleLifecycle(t, newRepo(t)) })
	t.Run("participants keep insertion order", func(t *testing.T) { testParticipantOrder(t, newRepo(t)) })
	t.Run("participant requires raffle", func(t *testing.T) { testParticipantRequiresRaffle(t, newRepo(t)) })
	t.Run("get participant", func(t *testing.T) { testGetParticipant(t, newRepo(t)) })
	t.Run("loss mutation", func(t *testing.T) { testLossMutation(t, newRepo(t)) })
	t.Run("loss mutation unknown participant", func(t *testing.T) { testLossMutationUnknown(t, newRepo(t)) })
	t.Run("concurrent loss mutations", func(t *testing.T) { testConcurrentLossMutations(t, newRepo(t)) })
}

func createRaffle(t *testing.T, repo repository.Repository, name string) *models.Raffle {
	t.Helper()
	raffle := &models.Raffle{Name: name, Creator: "admin"}
	require.NoError(t, repo.CreateRaffle(context.Background(), raffle))
	require.NotZero(t, raffle.ID)
	return raffle
}

func addParticipant(t *testing.T, repo repository.Repository, raffleID int64, name string, tickets int) *models.Participant {
	t.Helper()
	p := &models.Participant{RaffleID: raffleID, Name: name, ValidTickets: tickets}
	require.NoError(t, repo.AddParticipant(context.Background(), p))
	require.NotZero(t, p.ID)
	return p
}

func testRaffleLifecycle(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	first := createRaffle(t, repo, "Spring raffle")
	second := createRaffle(t, repo, "Summer raffle")
	assert.NotEqual(t, first.ID, second.ID)

	got, err := repo.GetRaffle(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spring raffle", got.Name)
	assert.Equal(t, "admin", got.Creator)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = repo.GetRaffle(ctx, second.ID+1000)
	assert.ErrorIs(t, err, repository.ErrRaffleNotFound)

	raffles, err := repo.ListRaffles(ctx)
	require.NoError(t, err)
	require.Len(t, raffles, 2)
	assert.Equal(t, first.ID, raffles[0].ID)
	assert.Equal(t, second.ID, raffles[1].ID)
}

func testParticipantOrder(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	raffle := createRaffle(t, repo, "Order")
	other := createRaffle(t, repo, "Other")

	c := addParticipant(t, repo, raffle.ID, "Carla", 1)
	a := addParticipant(t, repo, raffle.ID, "Ana", 3)
	addParticipant(t, repo, other.ID, "Zed", 9)
	b := addParticipant(t, repo, raffle.ID, "Bruno", 1)

	all, err := repo.ListParticipants(ctx, raffle.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{c.ID, a.ID, b.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, models.StatusParticipating, all[0].Status)

	// Carla loses her only ticket and drops out of the participating list.
	applied, err := repo.ApplyLossMutation(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, applied)

	participating, err := repo.ListParticipating(ctx, raffle.ID)
	require.NoError(t, err)
	require.Len(t, participating, 2)
	assert.Equal(t, a.ID, participating[0].ID)
	assert.Equal(t, b.ID, participating[1].ID)

	all, err = repo.ListParticipants(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	empty, err := repo.ListParticipating(ctx, other.ID+1000)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testParticipantRequiresRaffle(t *testing.T, repo repository.Repository) {
	err := repo.AddParticipant(context.Background(), &models.Participant{RaffleID: 4242, Name: "Nobody", ValidTickets: 1})
	assert.ErrorIs(t, err, repository.ErrRaffleNotFound)
}

func testGetParticipant(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	raffle := createRaffle(t, repo, "Get")
	p := addParticipant(t, repo, raffle.ID, "Dora", 4)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dora", got.Name)
	assert.Equal(t, raffle.ID, got.RaffleID)
	assert.Equal(t, 4, got.ValidTickets)
	assert.Equal(t, 0, got.InvalidTickets)

	_, err = repo.GetByID(ctx, p.ID+1000)
	assert.ErrorIs(t, err, repository.ErrParticipantNotFound)
}

func testLossMutation(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	raffle := createRaffle(t, repo, "Mutation")
	p := addParticipant(t, repo, raffle.ID, "Eva", 2)

	applied, err := repo.ApplyLossMutation(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ValidTickets)
	assert.Equal(t, 1, got.InvalidTickets)
	assert.Equal(t, models.StatusParticipating, got.Status)

	applied, err = repo.ApplyLossMutation(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ValidTickets)
	assert.Equal(t, 2, got.InvalidTickets)
	assert.Equal(t, models.StatusDisqualified, got.Status)

	// nothing left to spend
	applied, err = repo.ApplyLossMutation(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ValidTickets)
	assert.Equal(t, 2, got.InvalidTickets)
}

func testLossMutationUnknown(t *testing.T, repo repository.Repository) {
	applied, err := repo.ApplyLossMutation(context.Background(), 987654)
	require.NoError(t, err)
	assert.False(t, applied)
}

func testConcurrentLossMutations(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	raffle := createRaffle(t, repo, "Concurrent")
	const tickets = 20
	p := addParticipant(t, repo, raffle.ID, "Fabio", tickets)

	const workers = 30
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.ApplyLossMutation(ctx, p.ID)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, tickets, applied)
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ValidTickets)
	assert.Equal(t, tickets, got.InvalidTickets)
	assert.Equal(t, models.StatusDisqualified, got.Status)
}
