package service

import (
	"context"

	"raffle-tool-backend/internal/features/raffle/models"
)

type RaffleService interface {
	// Методы для работы с розыгрышами
	CreateRaffle(ctx context.Context, req *models.RaffleCreate) (*models.RaffleDetails, error)
	ListRaffles(ctx context.Context) ([]models.Raffle, error)
	GetRaffle(ctx context.Context, id int64) (*models.Raffle, error)
	GetRaffleDetails(ctx context.Context, id int64) (*models.RaffleDetails, error)

	// Методы для работы с участниками
	ListParticipants(ctx context.Context, raffleID int64) ([]models.Participant, error)
	AddParticipant(ctx context.Context, raffleID int64, input *models.ParticipantInput) (*models.Participant, error)

	// Draw runs one draw over the current participating snapshot.
	Draw(ctx context.Context, raffleID int64, opts models.DrawOptions) (*models.DrawResponse, error)
}
