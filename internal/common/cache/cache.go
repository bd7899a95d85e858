package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss возвращается Get, если ключа нет в кэше
var ErrMiss = errors.New("cache miss")

const raffleKey = "cache:raffle:%d"

// RaffleKey возвращает ключ кэша для метаданных розыгрыша
func RaffleKey(id int64) string {
	return fmt.Sprintf(raffleKey, id)
}

type CacheService struct {
	redisClient redis.Cmdable
	ttl         time.Duration
}

func NewCacheService(redisClient redis.Cmdable, ttl time.Duration) *CacheService {
	return &CacheService{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

// Get получает значение из кэша
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.redisClient.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), dest)
}

// Set сохраняет значение в кэш
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.redisClient.Set(ctx, key, string(data), c.ttl).Err()
}

// Delete удаляет значение из кэша
func (c *CacheService) Delete(ctx context.Context, key string) error {
	return c.redisClient.Del(ctx, key).Err()
}

// GetOrSet читает dest из кэша, а при промахе заполняет его через load.
// Ошибки самого кэша не мешают чтению из хранилища.
func (c *CacheService) GetOrSet(ctx context.Context, key string, dest interface{}, load func() (interface{}, error)) (bool, error) {
	if err := c.Get(ctx, key, dest); err == nil {
		return true, nil
	}

	value, err := load()
	if err != nil {
		return false, err
	}

	// Сохраняем в кэш, ошибку записи игнорируем
	_ = c.Set(ctx, key, value)

	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	return false, json.Unmarshal(data, dest)
}
