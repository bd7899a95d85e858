// Package draw turns a participant snapshot into a weighted random winner.
package draw

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"raffle-tool-backend/internal/features/raffle/models"
)

var (
	ErrNoParticipantsLeft     = errors.New("no more participants left")
	ErrDegenerateDistribution = errors.New("inverted weighted distribution is empty")
	ErrEntropyUnavailable     = errors.New("entropy source unavailable")
	ErrEmptyPool              = errors.New("ticket pool is empty")
	ErrInvalidRange           = errors.New("invalid random range")
	ErrUnknownLevel           = errors.New("unknown draw level")
)

// Mutator persists the invested mode penalty of a winner.
type Mutator interface {
	ApplyLossMutation(ctx context.Context, id int64) (bool, error)
}

// Engine runs one draw over a participant snapshot. It is built per draw
// and must not be reused across calls.
type Engine struct {
	participants []models.Participant
	pool         *TicketPool
	gen          *Generator
	mutator      Mutator
	log          zerolog.Logger

	entropy io.Reader
	prng    *rand.Rand
}

type Option func(*Engine)

// WithEntropy replaces crypto/rand as the secure randomness source.
func WithEntropy(r io.Reader) Option {
	return func(e *Engine) { e.entropy = r }
}

// WithPRNG replaces the pseudo-random source.
func WithPRNG(r *rand.Rand) Option {
	return func(e *Engine) { e.prng = r }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine builds the ticket pool from the participating members of the
// snapshot.
func NewEngine(participants []models.Participant, mutator Mutator, opts ...Option) *Engine {
	e := &Engine{
		mutator: mutator,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.participants = make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		if p.IsParticipating() {
			e.participants = append(e.participants, p)
		}
	}
	e.pool = NewTicketPool(e.participants)
	e.gen = NewGenerator(e.entropy, e.prng)

	e.log.Debug().
		Int("participants", len(e.participants)).
		Int("tickets", e.pool.Len()).
		Ints64("repeated_ids", e.pool.IDs).
		Msg("Ticket pool built")

	return e
}

// Pool exposes the ticket pool of this draw.
func (e *Engine) Pool() *TicketPool {
	return e.pool
}

// Participants returns the participating snapshot.
func (e *Engine) Participants() []models.Participant {
	return e.participants
}

// Draw runs the strategy selected by opts and resolves a winner. Pools with
// fewer than two tickets return ErrNoParticipantsLeft before any random
// source is touched.
func (e *Engine) Draw(ctx context.Context, opts models.DrawOptions) (*models.DrawResult, error) {
	if e.pool.Len() <= 1 {
		return nil, ErrNoParticipantsLeft
	}

	var (
		lanes Lanes
		err   error
	)
	switch opts.Level {
	case models.DrawLevelSoft, "":
		lanes, err = e.softLanes(opts.Invested)
	case models.DrawLevelHalf:
		lanes, err = e.halfLanes(opts.Invested)
	case models.DrawLevelHard:
		lanes, err = e.hardLanes()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownLevel, opts.Level)
	}
	if err != nil {
		return nil, err
	}

	result := &models.DrawResult{
		Participating: e.participants,
		Lane1:         lanes[0],
		Lane2:         lanes[1],
		Lane3:         lanes[2],
	}

	winner, ok := Resolve(lanes, opts.TwoThree)
	if ok {
		result.Winner = &winner
		result.WinnerName, _ = e.pool.NameOf(winner)

		if opts.Invested {
			mutated, err := e.applyLoss(ctx, winner)
			if err != nil {
				return nil, err
			}
			result.Mutated = mutated
		}
	}

	event := e.log.Info().
		Str("level", string(opts.Level)).
		Bool("invested", opts.Invested).
		Bool("two_three", opts.TwoThree).
		Int64("lane1", lanes[0]).
		Int64("lane2", lanes[1]).
		Int64("lane3", lanes[2])
	if ok {
		event = event.Int64("winner", winner)
	}
	event.Msg("Draw executed")

	return result, nil
}

func (e *Engine) applyLoss(ctx context.Context, id int64) (bool, error) {
	if e.mutator == nil {
		return false, nil
	}
	mutated, err := e.mutator.ApplyLossMutation(ctx, id)
	if err != nil {
		return false, fmt.Errorf("apply loss mutation for participant %d: %w", id, err)
	}
	if !mutated {
		e.log.Warn().Int64("participant_id", id).Msg("Loss mutation target not found, skipping")
	}
	return mutated, nil
}
