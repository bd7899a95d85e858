package draw

import (
	"bytes"
	"context"
	cryptorand "crypto/rand"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle-tool-backend/internal/features/raffle/models"
)

type countingSource struct {
	src   rand.Source
	calls int
}

func (c *countingSource) Uint64() uint64 {
	c.calls++
	return c.src.Uint64()
}

type countingReader struct {
	reads int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	return cryptorand.Read(p)
}

type fakeMutator struct {
	calls   []int64
	applied bool
	err     error
}

func (m *fakeMutator) ApplyLossMutation(_ context.Context, id int64) (bool, error) {
	m.calls = append(m.calls, id)
	return m.applied, m.err
}

func TestDrawShortCircuitsSmallPools(t *testing.T) {
	pools := map[string][]models.Participant{
		"empty":         nil,
		"zero tickets":  {participant(1, "a", 0), participant(2, "b", 0)},
		"single ticket": {participant(1, "a", 1)},
	}

	for name, participants := range pools {
		t.Run(name, func(t *testing.T) {
			src := &countingSource{src: rand.NewPCG(1, 2)}
			entropy := &countingReader{}
			mutator := &fakeMutator{applied: true}
			engine := NewEngine(participants, mutator, WithEntropy(entropy), WithPRNG(rand.New(src)))

			for _, level := range []models.DrawLevel{models.DrawLevelSoft, models.DrawLevelHalf, models.DrawLevelHard} {
				result, err := engine.Draw(context.Background(), models.DrawOptions{Level: level, Invested: true, TwoThree: true})
				assert.ErrorIs(t, err, ErrNoParticipantsLeft)
				assert.Nil(t, result)
			}

			assert.Zero(t, src.calls)
			assert.Zero(t, entropy.reads)
			assert.Empty(t, mutator.calls)
		})
	}
}

func TestDrawIgnoresDisqualifiedParticipants(t *testing.T) {
	disqualified := participant(2, "gone", 5)
	disqualified.Status = models.StatusDisqualified

	engine := NewEngine([]models.Participant{participant(1, "a", 2), disqualified}, nil, WithPRNG(seeded()))

	assert.Equal(t, []int64{1, 1}, engine.Pool().IDs)
	require.Len(t, engine.Participants(), 1)

	result, err := engine.Draw(context.Background(), models.DrawOptions{Level: models.DrawLevelSoft})
	require.NoError(t, err)
	require.True(t, result.HasWinner())
	assert.EqualValues(t, 1, *result.Winner)
	assert.Equal(t, "a", result.WinnerName)
	assert.Len(t, result.Participating, 1)
}

func TestLanesAlwaysComeFromThePool(t *testing.T) {
	participants := []models.Participant{
		participant(10, "a", 3),
		participant(20, "b", 1),
		participant(30, "c", 2),
	}
	valid := map[int64]bool{10: true, 20: true, 30: true}

	for _, level := range []models.DrawLevel{models.DrawLevelSoft, models.DrawLevelHalf, models.DrawLevelHard} {
		for _, invested := range []bool{false, true} {
			engine := NewEngine(participants, nil, WithPRNG(seeded()))
			for i := 0; i < 200; i++ {
				result, err := engine.Draw(context.Background(), models.DrawOptions{Level: level, Invested: invested})
				require.NoError(t, err)
				assert.True(t, valid[result.Lane1], "level %s lane1 %d", level, result.Lane1)
				assert.True(t, valid[result.Lane2], "level %s lane2 %d", level, result.Lane2)
				assert.True(t, valid[result.Lane3], "level %s lane3 %d", level, result.Lane3)
			}
		}
	}
}

func TestHardLaneTwoNeverPicksLastTicket(t *testing.T) {
	participants := []models.Participant{
		participant(1, "many", 5),
		participant(2, "last", 1),
	}
	engine := NewEngine(participants, nil, WithPRNG(seeded()))

	lane1Last, lane3Last := 0, 0
	for i := 0; i < 3000; i++ {
		result, err := engine.Draw(context.Background(), models.DrawOptions{Level: models.DrawLevelHard})
		require.NoError(t, err)
		require.NotEqual(t, int64(2), result.Lane2)
		if result.Lane1 == 2 {
			lane1Last++
		}
		if result.Lane3 == 2 {
			lane3Last++
		}
	}

	// lanes 1 and 3 cover the whole range
	assert.Positive(t, lane1Last)
	assert.Positive(t, lane3Last)
}

func TestStrictSingleOwnerAlwaysWins(t *testing.T) {
	engine := NewEngine([]models.Participant{participant(7, "solo", 2)}, nil, WithPRNG(seeded()))

	for _, level := range []models.DrawLevel{models.DrawLevelSoft, models.DrawLevelHalf, models.DrawLevelHard} {
		result, err := engine.Draw(context.Background(), models.DrawOptions{Level: level})
		require.NoError(t, err)
		require.True(t, result.HasWinner())
		assert.EqualValues(t, 7, *result.Winner)
	}
}

// hardTwoThreeEngine builds a pool [a, b] where hard lanes 2 and 3 always
// land on ticket 0: lane 2 ranges over [0, 0] and lane 3 reads zero bytes.
func hardTwoThreeEngine(mutator Mutator) *Engine {
	participants := []models.Participant{
		participant(1, "a", 1),
		participant(2, "b", 1),
	}
	return NewEngine(participants, mutator,
		WithEntropy(bytes.NewReader(make([]byte, 64))),
		WithPRNG(seeded()),
	)
}

func TestInvestedWinnerIsMutated(t *testing.T) {
	mutator := &fakeMutator{applied: true}
	engine := hardTwoThreeEngine(mutator)

	result, err := engine.Draw(context.Background(), models.DrawOptions{
		Level:    models.DrawLevelHard,
		Invested: true,
		TwoThree: true,
	})
	require.NoError(t, err)
	require.True(t, result.HasWinner())
	assert.EqualValues(t, 1, *result.Winner)
	assert.True(t, result.Mutated)
	assert.Equal(t, []int64{1}, mutator.calls)
}

func TestNonInvestedWinnerIsNotMutated(t *testing.T) {
	mutator := &fakeMutator{applied: true}
	engine := hardTwoThreeEngine(mutator)

	result, err := engine.Draw(context.Background(), models.DrawOptions{
		Level:    models.DrawLevelHard,
		TwoThree: true,
	})
	require.NoError(t, err)
	require.True(t, result.HasWinner())
	assert.False(t, result.Mutated)
	assert.Empty(t, mutator.calls)
}

func TestMissingMutationTargetStillReturnsResult(t *testing.T) {
	mutator := &fakeMutator{applied: false}
	engine := hardTwoThreeEngine(mutator)

	result, err := engine.Draw(context.Background(), models.DrawOptions{
		Level:    models.DrawLevelHard,
		Invested: true,
		TwoThree: true,
	})
	require.NoError(t, err)
	require.True(t, result.HasWinner())
	assert.False(t, result.Mutated)
	assert.Len(t, mutator.calls, 1)
}

func TestMutationFailureIsReturned(t *testing.T) {
	storageErr := errors.New("connection reset")
	engine := hardTwoThreeEngine(&fakeMutator{err: storageErr})

	_, err := engine.Draw(context.Background(), models.DrawOptions{
		Level:    models.DrawLevelHard,
		Invested: true,
		TwoThree: true,
	})
	assert.ErrorIs(t, err, storageErr)
}

func TestInvestedSoftDrawOnSingleOwnerIsDegenerate(t *testing.T) {
	engine := NewEngine([]models.Participant{participant(1, "solo", 4)}, nil, WithPRNG(seeded()))

	_, err := engine.Draw(context.Background(), models.DrawOptions{Level: models.DrawLevelSoft, Invested: true})
	assert.ErrorIs(t, err, ErrDegenerateDistribution)

	_, err = engine.Draw(context.Background(), models.DrawOptions{Level: models.DrawLevelHalf, Invested: true})
	assert.ErrorIs(t, err, ErrDegenerateDistribution)
}

func TestEntropyFailureAbortsDraw(t *testing.T) {
	participants := []models.Participant{participant(1, "a", 2), participant(2, "b", 2)}
	engine := NewEngine(participants, nil, WithEntropy(failingReader{}), WithPRNG(seeded()))

	_, err := engine.Draw(context.Background(), models.DrawOptions{Level: models.DrawLevelHalf})
	assert.ErrorIs(t, err, ErrEntropyUnavailable)

	_, err = engine.Draw(context.Background(), models.DrawOptions{Level: models.DrawLevelHard})
	assert.ErrorIs(t, err, ErrEntropyUnavailable)
}

func TestUnknownLevel(t *testing.T) {
	engine := NewEngine([]models.Participant{participant(1, "a", 2)}, nil)

	_, err := engine.Draw(context.Background(), models.DrawOptions{Level: "extreme"})
	assert.ErrorIs(t, err, ErrUnknownLevel)
}
