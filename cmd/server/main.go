package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"raffle-tool-backend/internal/common/cache"
	"raffle-tool-backend/internal/common/config"
	"raffle-tool-backend/internal/common/logger"
	"raffle-tool-backend/internal/features/raffle/service"
	"raffle-tool-backend/internal/platform/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Debug)

	logger.Info().
		Bool("debug", cfg.Debug).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting Raffle Tool Backend")

	ctx := context.Background()

	// Инициализируем хранилище
	repo, err := openRepository(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer repo.Close()

	deps := []dependency{{name: cfg.Storage.Driver, pinger: repo}}

	var svcOpts []service.Option
	if cfg.Cache.Enabled {
		redisClient, err := redis.NewClient(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis cache")
		}
		defer redisClient.Close()

		svcOpts = append(svcOpts, service.WithCache(cache.NewCacheService(redisClient.Client, cfg.Cache.TTL)))
		deps = append(deps, dependency{name: "redis cache", pinger: pingFunc(redisClient.HealthCheck)})
		logger.Info().Dur("ttl", cfg.Cache.TTL).Msg("Cache service initialized")
	}

	raffleSvc := service.NewRaffleService(repo, logger.Component("raffle"), svcOpts...)

	// Настраиваем Gin
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg.Server.Origin, logger.Component("http"), raffleSvc, deps...)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Ждем сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
