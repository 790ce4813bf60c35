package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"farcaster-pulse/internal/infra/metrics"
)

// Entry хранит значение кэша вместе с моментами создания и истечения.
type Entry[T any] struct {
	Data      T
	Timestamp time.Time
	ExpiresAt time.Time
}

// Store реализует ограниченный по размеру TTL-кэш в памяти процесса.
// Одновременные промахи по одному ключу схлопываются в один вызов
// producer через singleflight.
type Store[T any] struct {
	mu         sync.Mutex
	entries    map[string]Entry[T]
	maxEntries int
	group      singleflight.Group
	now        func() time.Time
}

// NewStore создаёт кэш. maxEntries <= 0 отключает ограничение размера.
func NewStore[T any](maxEntries int) *Store[T] {
	return &Store[T]{
		entries:    make(map[string]Entry[T]),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get возвращает свежее значение. Истёкшая запись считается отсутствующей
// и лениво удаляется при обращении.
func (s *Store[T]) Get(key string) (T, bool) {
	var zero T
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	if now.After(entry.ExpiresAt) {
		delete(s.entries, key)
		return zero, false
	}
	return entry.Data, true
}

// Set сохраняет значение, безусловно перезаписывая существующую запись.
func (s *Store[T]) Set(key string, value T, ttl time.Duration) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[key]; !exists && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.evictSoonest()
	}
	s.entries[key] = Entry[T]{Data: value, Timestamp: now, ExpiresAt: now.Add(ttl)}
}

// evictSoonest удаляет запись с ближайшим истечением. Вызывается под mu.
func (s *Store[T]) evictSoonest() {
	var victim string
	var soonest time.Time
	first := true
	for key, entry := range s.entries {
		if first || entry.ExpiresAt.Before(soonest) {
			victim = key
			soonest = entry.ExpiresAt
			first = false
		}
	}
	if !first {
		delete(s.entries, victim)
		metrics.CacheEvictions.Inc()
	}
}

// GetOrCompute возвращает кэшированное значение, а при промахе гарантирует
// не более одного одновременного вызова producer на ключ. Ошибка producer
// возвращается всем ожидающим и не кэшируется.
func (s *Store[T]) GetOrCompute(ctx context.Context, key string, ttl time.Duration, producer func(ctx context.Context) (T, error)) (T, error) {
	if value, ok := s.Get(key); ok {
		metrics.CacheHits.Inc()
		return value, nil
	}
	metrics.CacheMisses.Inc()

	result, err, _ := s.group.Do(key, func() (any, error) {
		// Повторная проверка: запись могла появиться, пока мы ждали слот.
		if value, ok := s.Get(key); ok {
			return value, nil
		}
		value, err := producer(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(key, value, ttl)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// Sweep удаляет истёкшие записи и возвращает их количество.
// Необязательная гигиена памяти: корректность TTL обеспечивается в Get.
func (s *Store[T]) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, entry := range s.entries {
		if now.After(entry.ExpiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len возвращает текущее количество записей.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
