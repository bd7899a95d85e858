package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"raffle-tool-backend/internal/features/raffle/models"
	"raffle-tool-backend/internal/features/raffle/repository"
)

const (
	RaffleNextIDKey      = "raffle:next_id"
	ParticipantNextIDKey = "participant:next_id"
	RafflesKey           = "raffles"
	RaffleKey            = "raffle:%d"
	RaffleParticipants   = "raffle:%d:participants"
	ParticipantKey       = "participant:%d"
)

// lossScript списывает один билет атомарно на стороне Redis.
// KEYS[1] - хэш участника, ARGV[1] - статус после последнего билета.
var lossScript = redis.NewScript(`
local valid = tonumber(redis.call('HGET', KEYS[1], 'valid_tickets'))
if not valid or valid <= 0 then
	return 0
end
valid = valid - 1
redis.call('HSET', KEYS[1], 'valid_tickets', valid)
redis.call('HINCRBY', KEYS[1], 'invalid_tickets', 1)
if valid == 0 then
	redis.call('HSET', KEYS[1], 'status', ARGV[1])
end
return 1
`)

type raffleRecord struct {
	Name      string `redis:"name"`
	Creator   string `redis:"creator"`
	CreatedAt int64  `redis:"created_at"`
}

type participantRecord struct {
	RaffleID       int64  `redis:"raffle_id"`
	Name           string `redis:"name"`
	ValidTickets   int    `redis:"valid_tickets"`
	InvalidTickets int    `redis:"invalid_tickets"`
	Status         string `redis:"status"`
}

func (r participantRecord) toModel(id int64) models.Participant {
	return models.Participant{
		ID:             id,
		RaffleID:       r.RaffleID,
		Name:           r.Name,
		ValidTickets:   r.ValidTickets,
		InvalidTickets: r.InvalidTickets,
		Status:         models.ParticipantStatus(r.Status),
	}
}

type redisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) repository.Repository {
	return &redisRepository{
		client: client,
	}
}

func (r *redisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisRepository) Close() error {
	return r.client.Close()
}

func (r *redisRepository) CreateRaffle(ctx context.Context, raffle *models.Raffle) error {
	name := strings.TrimSpace(raffle.Name)
	if name == "" {
		return fmt.Errorf("create raffle: %w", models.ErrEmptyName)
	}
	if raffle.CreatedAt.IsZero() {
		raffle.CreatedAt = time.Now().UTC()
	}
	// redis хранит миллисекунды, как и sqlite
	raffle.CreatedAt = raffle.CreatedAt.UTC().Truncate(time.Millisecond)

	id, err := r.client.Incr(ctx, RaffleNextIDKey).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate raffle id: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, fmt.Sprintf(RaffleKey, id), map[string]interface{}{
			"name":       name,
			"creator":    raffle.Creator,
			"created_at": raffle.CreatedAt.UnixMilli(),
		})
		pipe.ZAdd(ctx, RafflesKey, redis.Z{Score: float64(id), Member: id})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create raffle: %w", err)
	}

	raffle.ID = id
	raffle.Name = name
	return nil
}

func (r *redisRepository) GetRaffle(ctx context.Context, id int64) (*models.Raffle, error) {
	cmd := r.client.HGetAll(ctx, fmt.Sprintf(RaffleKey, id))
	return raffleFromCmd(id, cmd)
}

func raffleFromCmd(id int64, cmd *redis.MapStringStringCmd) (*models.Raffle, error) {
	fields, err := cmd.Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if len(fields) == 0 {
		return nil, repository.ErrRaffleNotFound
	}

	var rec raffleRecord
	if err := cmd.Scan(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode raffle %d: %w", id, err)
	}
	return &models.Raffle{
		ID:        id,
		Name:      rec.Name,
		Creator:   rec.Creator,
		CreatedAt: time.UnixMilli(rec.CreatedAt).UTC(),
	}, nil
}

func (r *redisRepository) ListRaffles(ctx context.Context) ([]models.Raffle, error) {
	ids, err := r.client.ZRange(ctx, RafflesKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list raffles: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	parsed := make([]int64, len(ids))
	for i, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad raffle id %q: %w", raw, err)
		}
		parsed[i] = id
		cmds[i] = pipe.HGetAll(ctx, fmt.Sprintf(RaffleKey, id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to list raffles: %w", err)
	}

	raffles := make([]models.Raffle, 0, len(ids))
	for i, cmd := range cmds {
		raffle, err := raffleFromCmd(parsed[i], cmd)
		if errors.Is(err, repository.ErrRaffleNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		raffles = append(raffles, *raffle)
	}
	return raffles, nil
}

func (r *redisRepository) AddParticipant(ctx context.Context, participant *models.Participant) error {
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

	exists, err := r.client.Exists(ctx, fmt.Sprintf(RaffleKey, participant.RaffleID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check raffle: %w", err)
	}
	if exists == 0 {
		return repository.ErrRaffleNotFound
	}

	id, err := r.client.Incr(ctx, ParticipantNextIDKey).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate participant id: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, fmt.Sprintf(ParticipantKey, id), map[string]interface{}{
			"raffle_id":       participant.RaffleID,
			"name":            name,
			"valid_tickets":   participant.ValidTickets,
			"invalid_tickets": participant.InvalidTickets,
			"status":          string(participant.Status),
		})
		pipe.RPush(ctx, fmt.Sprintf(RaffleParticipants, participant.RaffleID), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}

	participant.ID = id
	participant.Name = name
	return nil
}

func (r *redisRepository) ListParticipants(ctx context.Context, raffleID int64) ([]models.Participant, error) {
	return r.list(ctx, raffleID, func(models.Participant) bool { return true })
}

func (r *redisRepository) ListParticipating(ctx context.Context, raffleID int64) ([]models.Participant, error) {
	return r.list(ctx, raffleID, func(p models.Participant) bool { return p.IsParticipating() })
}

func (r *redisRepository) list(ctx context.Context, raffleID int64, keep func(models.Participant) bool) ([]models.Participant, error) {
	ids, err := r.client.LRange(ctx, fmt.Sprintf(RaffleParticipants, raffleID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	participants := make([]models.Participant, 0, len(ids))
	if len(ids) == 0 {
		return participants, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	parsed := make([]int64, len(ids))
	for i, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad participant id %q: %w", raw, err)
		}
		parsed[i] = id
		cmds[i] = pipe.HGetAll(ctx, fmt.Sprintf(ParticipantKey, id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	for i, cmd := range cmds {
		p, err := participantFromCmd(parsed[i], cmd)
		if errors.Is(err, repository.ErrParticipantNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if keep(*p) {
			participants = append(participants, *p)
		}
	}
	return participants, nil
}

func participantFromCmd(id int64, cmd *redis.MapStringStringCmd) (*models.Participant, error) {
	fields, err := cmd.Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	if len(fields) == 0 {
		return nil, repository.ErrParticipantNotFound
	}

	var rec participantRecord
	if err := cmd.Scan(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode participant %d: %w", id, err)
	}
	p := rec.toModel(id)
	return &p, nil
}

func (r *redisRepository) GetByID(ctx context.Context, id int64) (*models.Participant, error) {
	return participantFromCmd(id, r.client.HGetAll(ctx, fmt.Sprintf(ParticipantKey, id)))
}

func (r *redisRepository) ApplyLossMutation(ctx context.Context, id int64) (bool, error) {
	applied, err := lossScript.Run(ctx, r.client,
		[]string{fmt.Sprintf(ParticipantKey, id)},
		string(models.StatusDisqualified),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to apply loss mutation: %w", err)
	}
	return applied == 1, nil
}
