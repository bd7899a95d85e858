package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"raffle-tool-backend/internal/features/raffle/models"
	"raffle-tool-backend/internal/features/raffle/repository"
	"raffle-tool-backend/internal/features/raffle/repository/postgres/migrations"
	"raffle-tool-backend/internal/platform/migrate"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository применяет миграции и возвращает репозиторий
func NewPostgresRepository(ctx context.Context, db *sql.DB) (repository.Repository, error) {
	if err := migrate.Apply(ctx, db, migrations.FS, migrate.Dollar); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &postgresRepository{db: db}, nil
}

func (r *postgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *postgresRepository) Close() error {
	return r.db.Close()
}

// CreateRaffle создает новый розыгрыш
func (r *postgresRepository) CreateRaffle(ctx context.Context, raffle *models.Raffle) error {
	name := strings.TrimSpace(raffle.Name)
	if name == "" {
		return fmt.Errorf("create raffle: %w", models.ErrEmptyName)
	}
	if raffle.CreatedAt.IsZero() {
		raffle.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO raffles (name, creator, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, name, raffle.Creator, raffle.CreatedAt).Scan(&raffle.ID); err != nil {
		return fmt.Errorf("failed to create raffle: %w", err)
	}
	raffle.Name = name
	return nil
}

// GetRaffle получает розыгрыш по ID
func (r *postgresRepository) GetRaffle(ctx context.Context, id int64) (*models.Raffle, error) {
	query := "SELECT id, name, creator, created_at FROM raffles WHERE id = $1"

	var raffle models.Raffle
	err := r.db.QueryRowContext(ctx, query, id).Scan(&raffle.ID, &raffle.Name, &raffle.Creator, &raffle.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrRaffleNotFound
		}
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	raffle.CreatedAt = raffle.CreatedAt.UTC()
	return &raffle, nil
}

// ListRaffles возвращает все розыгрыши
func (r *postgresRepository) ListRaffles(ctx context.Context) ([]models.Raffle, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, creator, created_at FROM raffles ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list raffles: %w", err)
	}
	defer rows.Close()

	var raffles []models.Raffle
	for rows.Next() {
		var raffle models.Raffle
		if err := rows.Scan(&raffle.ID, &raffle.Name, &raffle.Creator, &raffle.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan raffle: %w", err)
		}
		raffle.CreatedAt = raffle.CreatedAt.UTC()
		raffles = append(raffles, raffle)
	}
	return raffles, rows.Err()
}

// AddParticipant добавляет участника в розыгрыш
func (r *postgresRepository) AddParticipant(ctx context.Context, participant *models.Participant) error {
	name := strings.TrimSpace(participant.Name)
	if name == "" {
		return fmt.Errorf("add participant: %w", models.ErrEmptyName)
	}
	if participant.ValidTickets < 0 || participant.InvalidTickets < 0 {
		return fmt.Errorf("add participant: %w", models.ErrInvalidTicketCount)
	}
	if participant.Status == "" {
		participant.Status = models.StatusParticipating
	}

	// INSERT ... SELECT вставляет строку только если розыгрыш существует
	query := `
		INSERT INTO participants (raffle_id, name, valid_tickets, invalid_tickets, status)
		SELECT id, $2::varchar, $3::integer, $4::integer, $5::varchar FROM raffles WHERE id = $1
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		participant.RaffleID, name, participant.ValidTickets, participant.InvalidTickets, string(participant.Status),
	).Scan(&participant.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrRaffleNotFound
		}
		return fmt.Errorf("failed to add participant: %w", err)
	}
	participant.Name = name
	return nil
}

// ListParticipants возвращает всех участников розыгрыша
func (r *postgresRepository) ListParticipants(ctx context.Context, raffleID int64) ([]models.Participant, error) {
	query := `
		SELECT id, raffle_id, name, valid_tickets, invalid_tickets, status
		FROM participants
		WHERE raffle_id = $1
		ORDER BY id
	`
	return r.queryParticipants(ctx, query, raffleID)
}

// ListParticipating возвращает участников со статусом Participating
func (r *postgresRepository) ListParticipating(ctx context.Context, raffleID int64) ([]models.Participant, error) {
	query := `
		SELECT id, raffle_id, name, valid_tickets, invalid_tickets, status
		FROM participants
		WHERE raffle_id = $1 AND status = $2
		ORDER BY id
	`
	return r.queryParticipants(ctx, query, raffleID, string(models.StatusParticipating))
}

func (r *postgresRepository) queryParticipants(ctx context.Context, query string, args ...interface{}) ([]models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	for rows.Next() {
		var (
			p      models.Participant
			status string
		)
		if err := rows.Scan(&p.ID, &p.RaffleID, &p.Name, &p.ValidTickets, &p.InvalidTickets, &status); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.Status = models.ParticipantStatus(status)
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// GetByID получает участника по ID
func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*models.Participant, error) {
	query := `
		SELECT id, raffle_id, name, valid_tickets, invalid_tickets, status
		FROM participants
		WHERE id = $1
	`

	var (
		p      models.Participant
		status string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.RaffleID, &p.Name, &p.ValidTickets, &p.InvalidTickets, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	p.Status = models.ParticipantStatus(status)
	return &p, nil
}

// ApplyLossMutation списывает один билет одним условным UPDATE
func (r *postgresRepository) ApplyLossMutation(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE participants
		SET valid_tickets = valid_tickets - 1,
			invalid_tickets = invalid_tickets + 1,
			status = CASE WHEN valid_tickets - 1 = 0 THEN $2::varchar ELSE status END
		WHERE id = $1 AND valid_tickets > 0
	`

	result, err := r.db.ExecContext(ctx, query, id, string(models.StatusDisqualified))
	if err != nil {
		return false, fmt.Errorf("failed to apply loss mutation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}
