package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"farcaster-pulse/internal/infra/metrics"
)

// RedisMirror дублирует записи кэша в Redis, чтобы парк инстансов API
// делил прогретые выдачи. Лучшая попытка: ошибки Redis логируются,
// локальный кэш остаётся источником истины.
type RedisMirror[T any] struct {
	client *redis.Client
	prefix string
	log    zerolog.Logger
}

// NewRedisMirror создаёт зеркало кэша.
func NewRedisMirror[T any](client *redis.Client, prefix string, logger zerolog.Logger) *RedisMirror[T] {
	return &RedisMirror[T]{client: client, prefix: prefix, log: logger}
}

// Get читает значение из Redis. Отсутствие ключа — не ошибка.
func (m *RedisMirror[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	start := time.Now()
	payload, err := m.client.Get(ctx, m.prefix+key).Bytes()
	metrics.ObserveNetworkRequest("redis", "cache_get", m.prefix, start, ignoreNil(err))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			m.log.Warn().Err(err).Str("key", key).Msg("cache: чтение из Redis не удалось")
		}
		return zero, false
	}
	var value T
	if err := json.Unmarshal(payload, &value); err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("cache: повреждённая запись в Redis")
		return zero, false
	}
	return value, true
}

// Set записывает значение в Redis с тем же TTL, что и локальная запись.
func (m *RedisMirror[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("cache: сериализация для Redis не удалась")
		return
	}
	start := time.Now()
	err = m.client.Set(ctx, m.prefix+key, payload, ttl).Err()
	metrics.ObserveNetworkRequest("redis", "cache_set", m.prefix, start, err)
	if err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("cache: запись в Redis не удалась")
	}
}

func ignoreNil(err error) error {
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
