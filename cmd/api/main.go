package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"farcaster-pulse/internal/adapters/neynar"
	"farcaster-pulse/internal/adapters/rest"
	"farcaster-pulse/internal/domain"
	"farcaster-pulse/internal/infra/cache"
	"farcaster-pulse/internal/infra/config"
	httpinfra "farcaster-pulse/internal/infra/http"
	applog "farcaster-pulse/internal/infra/log"
	"farcaster-pulse/internal/infra/metrics"
	"farcaster-pulse/internal/usecase/channels"
	"farcaster-pulse/internal/usecase/popularity"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)

	registry, err := channels.Load(cfg.ChannelsFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: не удалось загрузить аллоулист каналов")
	}

	var mirror *cache.RedisMirror[domain.AggregationResult]
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		mirror = cache.NewRedisMirror[domain.AggregationResult](redisClient, "pulse:posts:", logger.With().Str("component", "cache").Logger())
		logger.Info().Str("addr", cfg.RedisAddr).Msg("api: включено зеркало кэша в Redis")
	}
	resultStore := cache.NewResultStore(cfg.Cache.MaxEntries, mirror)

	fetcher := neynar.NewClient(cfg.Neynar.APIKey, cfg.Neynar.BaseURL, cfg.Neynar.Timeout, cfg.Neynar.RetryMax, logger.With().Str("component", "neynar").Logger())
	popularityService := popularity.NewService(
		registry,
		fetcher,
		resultStore,
		cfg.Weights(),
		cfg.Display.PostsPerPage,
		cfg.Cache.TTL,
		cfg.Neynar.Timeout,
		logger.With().Str("component", "popularity").Logger(),
	)

	server := httpinfra.NewServer(logger.With().Str("component", "http").Logger())
	rest.NewHandler(popularityService, cfg.Display.DefaultTimeRange, logger.With().Str("component", "rest").Logger()).Register(server.Router)

	go func() {
		if err := server.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("api: сервер остановлен")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("api: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}
