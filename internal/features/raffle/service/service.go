package service

import (
	"context"
	stderrors "errors"
	"io"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"raffle-tool-backend/internal/common/cache"
	"raffle-tool-backend/internal/common/errors"
	"raffle-tool-backend/internal/common/validation"
	"raffle-tool-backend/internal/features/raffle/draw"
	"raffle-tool-backend/internal/features/raffle/models"
	"raffle-tool-backend/internal/features/raffle/repository"
)

type raffleService struct {
	repo   repository.Repository
	cache  *cache.CacheService
	logger zerolog.Logger

	entropy io.Reader
	prng    *rand.Rand
}

type Option func(*raffleService)

// WithCache включает кэш метаданных розыгрышей
func WithCache(c *cache.CacheService) Option {
	return func(s *raffleService) { s.cache = c }
}

// WithEntropy and WithPRNG are handed to every draw engine. A shared
// *rand.Rand is not safe for concurrent draws, so WithPRNG is for tests.
func WithEntropy(r io.Reader) Option {
	return func(s *raffleService) { s.entropy = r }
}

func WithPRNG(r *rand.Rand) Option {
	return func(s *raffleService) { s.prng = r }
}

func NewRaffleService(repo repository.Repository, logger zerolog.Logger, opts ...Option) RaffleService {
	s := &raffleService{
		repo:   repo,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRaffle создает розыгрыш вместе с начальным списком участников
func (s *raffleService) CreateRaffle(ctx context.Context, req *models.RaffleCreate) (*models.RaffleDetails, error) {
	if err := validation.ValidateTitle(req.Title); err != nil {
		return nil, errors.NewValidationError("title", err.Error())
	}
	if err := validation.ValidateCreator(req.Creator); err != nil {
		return nil, errors.NewValidationError("creator", err.Error())
	}
	for i := range req.Participants {
		if err := validateParticipant(&req.Participants[i]); err != nil {
			return nil, err.WithDetail("index", i)
		}
	}

	raffle := &models.Raffle{Name: req.Title, Creator: req.Creator}
	if err := s.repo.CreateRaffle(ctx, raffle); err != nil {
		s.logger.Error().Err(err).Str("title", req.Title).Msg("Failed to create raffle")
		return nil, errors.NewDatabaseError("create raffle", err)
	}

	details := &models.RaffleDetails{Raffle: *raffle, Participants: make([]models.Participant, 0, len(req.Participants))}
	for _, in := range req.Participants {
		p := &models.Participant{RaffleID: raffle.ID, Name: in.Name, ValidTickets: in.Tickets}
		if err := s.repo.AddParticipant(ctx, p); err != nil {
			s.logger.Error().Err(err).Int64("raffle_id", raffle.ID).Str("name", in.Name).Msg("Failed to add participant")
			return nil, errors.NewDatabaseError("add participant", err).WithDetail("raffle_id", raffle.ID)
		}
		details.Participants = append(details.Participants, *p)
	}

	s.logger.Info().
		Int64("raffle_id", raffle.ID).
		Int("participants", len(details.Participants)).
		Msg("Raffle created")

	return details, nil
}

func (s *raffleService) ListRaffles(ctx context.Context) ([]models.Raffle, error) {
	raffles, err := s.repo.ListRaffles(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list raffles")
		return nil, errors.NewDatabaseError("list raffles", err)
	}
	if raffles == nil {
		raffles = []models.Raffle{}
	}
	return raffles, nil
}

// GetRaffle получает розыгрыш, по возможности из кэша
func (s *raffleService) GetRaffle(ctx context.Context, id int64) (*models.Raffle, error) {
	if err := validation.ValidatePositiveInt(id, "raffle ID"); err != nil {
		return nil, errors.NewValidationError("raffle_id", "Raffle ID must be positive").
			WithDetail("provided_value", id)
	}

	if s.cache == nil {
		raffle, err := s.repo.GetRaffle(ctx, id)
		if err != nil {
			return nil, s.mapRepoError(err, id, "get raffle")
		}
		return raffle, nil
	}

	// метаданные розыгрыша не меняются после создания
	var raffle models.Raffle
	hit, err := s.cache.GetOrSet(ctx, cache.RaffleKey(id), &raffle, func() (interface{}, error) {
		return s.repo.GetRaffle(ctx, id)
	})
	if err != nil {
		return nil, s.mapRepoError(err, id, "get raffle")
	}
	if hit {
		s.logger.Debug().Int64("raffle_id", id).Msg("Raffle served from cache")
	}
	return &raffle, nil
}

func (s *raffleService) GetRaffleDetails(ctx context.Context, id int64) (*models.RaffleDetails, error) {
	raffle, err := s.GetRaffle(ctx, id)
	if err != nil {
		return nil, err
	}

	participants, err := s.repo.ListParticipants(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "list participants")
	}
	return &models.RaffleDetails{Raffle: *raffle, Participants: participants}, nil
}

func (s *raffleService) ListParticipants(ctx context.Context, raffleID int64) ([]models.Participant, error) {
	if _, err := s.GetRaffle(ctx, raffleID); err != nil {
		return nil, err
	}

	participants, err := s.repo.ListParticipants(ctx, raffleID)
	if err != nil {
		return nil, s.mapRepoError(err, raffleID, "list participants")
	}
	return participants, nil
}

func (s *raffleService) AddParticipant(ctx context.Context, raffleID int64, input *models.ParticipantInput) (*models.Participant, error) {
	if err := validation.ValidatePositiveInt(raffleID, "raffle ID"); err != nil {
		return nil, errors.NewValidationError("raffle_id", "Raffle ID must be positive")
	}
	if err := validateParticipant(input); err != nil {
		return nil, err
	}

	p := &models.Participant{RaffleID: raffleID, Name: input.Name, ValidTickets: input.Tickets}
	if err := s.repo.AddParticipant(ctx, p); err != nil {
		return nil, s.mapRepoError(err, raffleID, "add participant")
	}

	s.logger.Info().
		Int64("raffle_id", raffleID).
		Int64("participant_id", p.ID).
		Int("tickets", p.ValidTickets).
		Msg("Participant added")

	return p, nil
}

// Draw проводит один розыгрыш
func (s *raffleService) Draw(ctx context.Context, raffleID int64, opts models.DrawOptions) (*models.DrawResponse, error) {
	level, ok := models.ParseDrawLevel(string(opts.Level))
	if !ok {
		return nil, errors.NewInvalidDrawLevelError(string(opts.Level))
	}
	opts.Level = level

	if _, err := s.GetRaffle(ctx, raffleID); err != nil {
		return nil, err
	}

	participants, err := s.repo.ListParticipating(ctx, raffleID)
	if err != nil {
		return nil, s.mapRepoError(err, raffleID, "list participating")
	}

	engine := draw.NewEngine(participants, s.repo,
		draw.WithEntropy(s.entropy),
		draw.WithPRNG(s.prng),
		draw.WithLogger(s.logger.With().Int64("raffle_id", raffleID).Logger()),
	)
	list := engine.Pool().IDs

	result, err := engine.Draw(ctx, opts)
	switch {
	case err == nil:
	case stderrors.Is(err, draw.ErrNoParticipantsLeft):
		return &models.DrawResponse{Legend: models.NoParticipantsLegend, List: list}, nil
	case stderrors.Is(err, draw.ErrUnknownLevel):
		return nil, errors.NewInvalidDrawLevelError(string(opts.Level))
	case stderrors.Is(err, draw.ErrDegenerateDistribution):
		return nil, errors.Wrapf(err, errors.ErrCodeDegenerateDistribution,
			"Raffle %d needs at least two ticket owners for inverted weighting", raffleID).
			WithDetail("raffle_id", raffleID)
	case stderrors.Is(err, draw.ErrEntropyUnavailable):
		s.logger.Error().Err(err).Int64("raffle_id", raffleID).Msg("Secure randomness unavailable")
		return nil, errors.Wrap(err, errors.ErrCodeEntropyUnavailable, "Secure randomness unavailable")
	default:
		s.logger.Error().Err(err).Int64("raffle_id", raffleID).Msg("Draw failed")
		return nil, errors.NewDatabaseError("draw", err).WithDetail("raffle_id", raffleID)
	}

	return &models.DrawResponse{
		Legend: opts.Legend(),
		List:   list,
		Result: result,
	}, nil
}

func validateParticipant(in *models.ParticipantInput) *errors.AppError {
	if err := validation.ValidateParticipantName(in.Name); err != nil {
		return errors.NewValidationError("name", err.Error())
	}
	if err := validation.ValidateTickets(in.Tickets); err != nil {
		return errors.NewValidationError("tickets", err.Error())
	}
	return nil
}

func (s *raffleService) mapRepoError(err error, raffleID int64, operation string) error {
	switch {
	case stderrors.Is(err, repository.ErrRaffleNotFound):
		return errors.NewRaffleNotFoundError(raffleID)
	case stderrors.Is(err, repository.ErrParticipantNotFound):
		return errors.Wrap(err, errors.ErrCodeParticipantNotFound, "Participant not found")
	case stderrors.Is(err, models.ErrEmptyName), stderrors.Is(err, models.ErrInvalidTicketCount):
		return errors.Wrap(err, errors.ErrCodeValidation, err.Error())
	}

	s.logger.Error().Err(err).Int64("raffle_id", raffleID).Str("operation", operation).Msg("Storage failure")
	return errors.NewDatabaseError(operation, err).WithDetail("raffle_id", raffleID)
}
