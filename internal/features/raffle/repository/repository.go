package repository

import (
	"context"
	"errors"

	"raffle-tool-backend/internal/features/raffle/models"
)

var (
	ErrRaffleNotFound      = errors.New("raffle not found")
	ErrParticipantNotFound = errors.New("participant not found")
)

// ParticipantRepository is everything the draw engine needs from storage.
type ParticipantRepository interface {
	// ListParticipating returns participants of the raffle with status
	// Participating, in insertion order.
	ListParticipating(ctx context.Context, raffleID int64) ([]models.Participant, error)
	GetByID(ctx context.Context, id int64) (*models.Participant, error)
	// ApplyLossMutation atomically spends one valid ticket of the participant.
	// It returns false without error when the participant does not exist or
	// has no valid tickets left.
	ApplyLossMutation(ctx context.Context, id int64) (bool, error)
}

type RaffleRepository interface {
	CreateRaffle(ctx context.Context, raffle *models.Raffle) error
	GetRaffle(ctx context.Context, id int64) (*models.Raffle, error)
	ListRaffles(ctx context.Context) ([]models.Raffle, error)

	AddParticipant(ctx context.Context, participant *models.Participant) error
	ListParticipants(ctx context.Context, raffleID int64) ([]models.Participant, error)
}

// Repository is implemented by every storage backend.
type Repository interface {
	RaffleRepository
	ParticipantRepository
	Ping(ctx context.Context) error
	Close() error
}
