package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"farcaster-pulse/internal/adapters/neynar"
	"farcaster-pulse/internal/domain"
	"farcaster-pulse/internal/infra/cache"
	"farcaster-pulse/internal/infra/config"
	applog "farcaster-pulse/internal/infra/log"
	"farcaster-pulse/internal/infra/metrics"
	"farcaster-pulse/internal/usecase/channels"
	"farcaster-pulse/internal/usecase/popularity"
	"farcaster-pulse/internal/usecase/refresh"
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
		logger.Fatal().Err(err).Msg("refresher: не удалось загрузить аллоулист каналов")
	}

	var mirror *cache.RedisMirror[domain.AggregationResult]
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		mirror = cache.NewRedisMirror[domain.AggregationResult](redisClient, "pulse:posts:", logger.With().Str("component", "cache").Logger())
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

	defaultRange, err := domain.ParseTimeRange(cfg.Display.DefaultTimeRange)
	if err != nil {
		logger.Fatal().Err(err).Msg("refresher: некорректное окно по умолчанию")
	}

	refreshService := refresh.NewService(registry, popularityService, resultStore, defaultRange, logger.With().Str("component", "refresh").Logger())

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.RefreshSpec, func() { refreshService.Run(ctx) }); err != nil {
		logger.Fatal().Err(err).Str("spec", cfg.RefreshSpec).Msg("refresher: некорректное расписание")
	}

	logger.Info().Str("spec", cfg.RefreshSpec).Msg("refresher: запуск")
	refreshService.Run(ctx)
	scheduler.Start()

	<-ctx.Done()
	logger.Info().Msg("refresher: остановка")
	<-scheduler.Stop().Done()
}
