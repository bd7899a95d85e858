package main

import (
	"context"
	"fmt"

	"raffle-tool-backend/internal/common/config"
	"raffle-tool-backend/internal/common/logger"
	"raffle-tool-backend/internal/features/raffle/repository"
	"raffle-tool-backend/internal/features/raffle/repository/memory"
	raffleRepoPostgres "raffle-tool-backend/internal/features/raffle/repository/postgres"
	raffleRepoRedis "raffle-tool-backend/internal/features/raffle/repository/redis"
	"raffle-tool-backend/internal/features/raffle/repository/sqlite"
	"raffle-tool-backend/internal/platform/postgres"
	"raffle-tool-backend/internal/platform/redis"
)

// openRepository выбирает хранилище по STORAGE_DRIVER
func openRepository(ctx context.Context, cfg *config.Config) (repository.Repository, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		logger.Warn().Msg("Using in-memory storage, data is lost on restart")
		return memory.NewStore(), nil

	case config.StorageSQLite:
		store, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Info().Str("path", cfg.Storage.SQLitePath).Msg("SQLite storage opened")
		return store, nil

	case config.StoragePostgres:
		client, err := postgres.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		repo, err := raffleRepoPostgres.NewPostgresRepository(ctx, client.GetDB())
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return repo, nil

	case config.StorageRedis:
		client, err := redis.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return raffleRepoRedis.NewRedisRepository(client.Client), nil
	}

	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}
