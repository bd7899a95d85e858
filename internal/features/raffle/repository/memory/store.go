package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"raffle-tool-backend/internal/features/raffle/models"
	"raffle-tool-backend/internal/features/raffle/repository"
)

// Store keeps raffles and participants in process memory.
type Store struct {
	mu sync.RWMutex

	raffles      map[int64]models.Raffle
	participants map[int64]*models.Participant
	// order of participant ids per raffle, in insertion order
	byRaffle map[int64][]int64

	nextRaffleID      int64
	nextParticipantID int64
}

func NewStore() *Store {
	return &Store{
		raffles:      make(map[int64]models.Raffle),
		participants: make(map[int64]*models.Participant),
		byRaffle:     make(map[int64][]int64),
	}
}

func (s *Store) CreateRaffle(ctx context.Context, raffle *models.Raffle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(raffle.Name) == "" {
		return fmt.Errorf("create raffle: %w", models.ErrEmptyName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRaffleID++
	raffle.ID = s.nextRaffleID
	if raffle.CreatedAt.IsZero() {
		raffle.CreatedAt = time.Now().UTC()
	}
	s.raffles[raffle.ID] = *raffle
	return nil
}

func (s *Store) GetRaffle(ctx context.Context, id int64) (*models.Raffle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	raffle, ok := s.raffles[id]
	if !ok {
		return nil, repository.ErrRaffleNotFound
	}
	return &raffle, nil
}

func (s *Store) ListRaffles(ctx context.Context) ([]models.Raffle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.Raffle, 0, len(s.raffles))
	for _, raffle := range s.raffles {
		items = append(items, raffle)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *Store) AddParticipant(ctx context.Context, participant *models.Participant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(participant.Name) == "" {
		return fmt.Errorf("add participant: %w", models.ErrEmptyName)
	}
	if participant.ValidTickets < 0 || participant.InvalidTickets < 0 {
		return fmt.Errorf("add participant: %w", models.ErrInvalidTicketCount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.raffles[participant.RaffleID]; !ok {
		return repository.ErrRaffleNotFound
	}

	s.nextParticipantID++
	participant.ID = s.nextParticipantID
	if participant.Status == "" {
		participant.Status = models.StatusParticipating
	}
	stored := *participant
	s.participants[stored.ID] = &stored
	s.byRaffle[stored.RaffleID] = append(s.byRaffle[stored.RaffleID], stored.ID)
	return nil
}

func (s *Store) ListParticipants(ctx context.Context, raffleID int64) ([]models.Participant, error) {
	return s.list(ctx, raffleID, func(*models.Participant) bool { return true })
}

func (s *Store) ListParticipating(ctx context.Context, raffleID int64) ([]models.Participant, error) {
	return s.list(ctx, raffleID, (*models.Participant).IsParticipating)
}

func (s *Store) list(ctx context.Context, raffleID int64, keep func(*models.Participant) bool) ([]models.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byRaffle[raffleID]
	items := make([]models.Participant, 0, len(ids))
	for _, id := range ids {
		p := s.participants[id]
		if keep(p) {
			items = append(items, *p)
		}
	}
	return items, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*models.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.participants[id]
	if !ok {
		return nil, repository.ErrParticipantNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *Store) ApplyLossMutation(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.participants[id]
	if !ok {
		return false, nil
	}
	return p.ApplyLoss(), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}

var _ repository.Repository = (*Store)(nil)
