// Package sqlite provides a SQLite-backed raffle storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"raffle-tool-backend/internal/features/raffle/models"
	"raffle-tool-backend/internal/features/raffle/repository"
	"raffle-tool-backend/internal/features/raffle/repository/sqlite/migrations"
	"raffle-tool-backend/internal/platform/migrate"
)

// Store persists raffles and participants in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite raffle store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// a single writer keeps read-modify-write statements serialised
	sqlDB.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate.Apply(ctx, sqlDB, migrations.FS, migrate.Question); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

func (s *Store) CreateRaffle(ctx context.Context, raffle *models.Raffle) error {
	name := strings.TrimSpace(raffle.Name)
	if name == "" {
		return fmt.Errorf("create raffle: %w", models.ErrEmptyName)
	}
	if raffle.CreatedAt.IsZero() {
		raffle.CreatedAt = time.Now().UTC()
	}

	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO raffles (name, creator, created_at) VALUES (?, ?, ?)`,
		name, raffle.Creator, toMillis(raffle.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert raffle: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("raffle id: %w", err)
	}
	raffle.ID = id
	raffle.Name = name
	return nil
}

func (s *Store) GetRaffle(ctx context.Context, id int64) (*models.Raffle, error) {
	var (
		raffle    models.Raffle
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, creator, created_at FROM raffles WHERE id = ?`, id,
	).Scan(&raffle.ID, &raffle.Name, &raffle.Creator, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrRaffleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get raffle: %w", err)
	}
	raffle.CreatedAt = fromMillis(createdAt)
	return &raffle, nil
}

func (s *Store) ListRaffles(ctx context.Context) ([]models.Raffle, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id, name, creator, created_at FROM raffles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list raffles: %w", err)
	}
	defer rows.Close()

	var raffles []models.Raffle
	for rows.Next() {
		var (
			raffle    models.Raffle
			createdAt int64
		)
		if err := rows.Scan(&raffle.ID, &raffle.Name, &raffle.Creator, &createdAt); err != nil {
			return nil, fmt.Errorf("scan raffle: %w", err)
		}
		raffle.CreatedAt = fromMillis(createdAt)
		raffles = append(raffles, raffle)
	}
	return raffles, rows.Err()
}

func (s *Store) AddParticipant(ctx context.Context, participant *models.Participant) error {
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

	if _, err := s.GetRaffle(ctx, participant.RaffleID); err != nil {
		return err
	}

	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO participants (raffle_id, name, valid_tickets, invalid_tickets, status)
		 VALUES (?, ?, ?, ?, ?)`,
		participant.RaffleID, name, participant.ValidTickets, participant.InvalidTickets, string(participant.Status))
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("participant id: %w", err)
	}
	participant.ID = id
	participant.Name = name
	return nil
}

func (s *Store) ListParticipants(ctx context.Context, raffleID int64) ([]models.Participant, error) {
	return s.queryParticipants(ctx,
		`SELECT id, raffle_id, name, valid_tickets, invalid_tickets, status
		 FROM participants WHERE raffle_id = ? ORDER BY id`, raffleID)
}

func (s *Store) ListParticipating(ctx context.Context, raffleID int64) ([]models.Participant, error) {
	return s.queryParticipants(ctx,
		`SELECT id, raffle_id, name, valid_tickets, invalid_tickets, status
		 FROM participants WHERE raffle_id = ? AND status = ? ORDER BY id`,
		raffleID, string(models.StatusParticipating))
}

func (s *Store) queryParticipants(ctx context.Context, query string, args ...any) ([]models.Participant, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row rowScanner) (models.Participant, error) {
	var (
		p      models.Participant
		status string
	)
	if err := row.Scan(&p.ID, &p.RaffleID, &p.Name, &p.ValidTickets, &p.InvalidTickets, &status); err != nil {
		return models.Participant{}, err
	}
	p.Status = models.ParticipantStatus(status)
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*models.Participant, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, raffle_id, name, valid_tickets, invalid_tickets, status
		 FROM participants WHERE id = ?`, id)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return &p, nil
}

// ApplyLossMutation spends one ticket in a single conditional UPDATE.
func (s *Store) ApplyLossMutation(ctx context.Context, id int64) (bool, error) {
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE participants
		 SET valid_tickets = valid_tickets - 1,
		     invalid_tickets = invalid_tickets + 1,
		     status = CASE WHEN valid_tickets - 1 = 0 THEN ? ELSE status END
		 WHERE id = ? AND valid_tickets > 0`,
		string(models.StatusDisqualified), id)
	if err != nil {
		return false, fmt.Errorf("apply loss mutation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("apply loss mutation: %w", err)
	}
	return affected == 1, nil
}

var _ repository.Repository = (*Store)(nil)
