package cache

import (
	"context"
	"time"

	"farcaster-pulse/internal/domain"
	"farcaster-pulse/internal/infra/metrics"
)

// ResultStore хранит готовые выдачи: локальный кэш с singleflight плюс
// необязательное зеркало в Redis.
type ResultStore struct {
	local  *Store[domain.AggregationResult]
	mirror *RedisMirror[domain.AggregationResult]
}

var _ domain.ResultCache = (*ResultStore)(nil)

// NewResultStore создаёт хранилище выдач. mirror может быть nil.
func NewResultStore(maxEntries int, mirror *RedisMirror[domain.AggregationResult]) *ResultStore {
	return &ResultStore{local: NewStore[domain.AggregationResult](maxEntries), mirror: mirror}
}

// Get возвращает свежую выдачу из локального кэша.
func (s *ResultStore) Get(key string) (domain.AggregationResult, bool) {
	return s.local.Get(key)
}

// Set сохраняет выдачу локально и в зеркале.
func (s *ResultStore) Set(key string, value domain.AggregationResult, ttl time.Duration) {
	s.local.Set(key, value, ttl)
	if s.mirror != nil {
		s.mirror.Set(context.Background(), key, value, ttl)
	}
}

// GetOrCompute возвращает кэшированную выдачу или строит её ровно один раз
// на ключ. Перед вызовом producer проверяется зеркало: прогретый другим
// инстансом результат не пересчитывается.
func (s *ResultStore) GetOrCompute(ctx context.Context, key string, ttl time.Duration, producer func(ctx context.Context) (domain.AggregationResult, error)) (domain.AggregationResult, error) {
	return s.local.GetOrCompute(ctx, key, ttl, func(ctx context.Context) (domain.AggregationResult, error) {
		if s.mirror != nil {
			if value, ok := s.mirror.Get(ctx, key); ok {
				metrics.CacheHits.Inc()
				return value, nil
			}
		}
		value, err := producer(ctx)
		if err != nil {
			return domain.AggregationResult{}, err
		}
		if s.mirror != nil {
			s.mirror.Set(ctx, key, value, ttl)
		}
		return value, nil
	})
}

// Sweep удаляет истёкшие локальные записи.
func (s *ResultStore) Sweep(now time.Time) int {
	return s.local.Sweep(now)
}

// Len возвращает размер локального кэша.
func (s *ResultStore) Len() int {
	return s.local.Len()
}
