package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore[string](0)
	store.Set("k", "value", time.Minute)
	got, ok := store.Get("k")
	if !ok {
		t.Fatalf("ожидали попадание в кэш")
	}
	if got != "value" {
		t.Fatalf("ожидали value, получили %s", got)
	}
}

func TestStoreExpiry(t *testing.T) {
	store := NewStore[string](0)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	store.Set("k", "value", time.Hour)
	if _, ok := store.Get("k"); !ok {
		t.Fatalf("ожидали свежую запись")
	}

	current = current.Add(time.Hour + time.Second)
	if _, ok := store.Get("k"); ok {
		t.Fatalf("ожидали отсутствие истёкшей записи")
	}
	if store.Len() != 0 {
		t.Fatalf("ожидали ленивое удаление истёкшей записи")
	}
}

func TestStoreOverwrite(t *testing.T) {
	store := NewStore[int](0)
	store.Set("k", 1, time.Minute)
	store.Set("k", 2, time.Minute)
	got, ok := store.Get("k")
	if !ok || got != 2 {
		t.Fatalf("ожидали перезапись значения, получили %d", got)
	}
}

func TestStoreEvictsSoonestExpiry(t *testing.T) {
	store := NewStore[string](2)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	store.Set("short", "a", time.Minute)
	store.Set("long", "b", time.Hour)
	store.Set("new", "c", 30*time.Minute)

	if _, ok := store.Get("short"); ok {
		t.Fatalf("ожидали вытеснение записи с ближайшим истечением")
	}
	if _, ok := store.Get("long"); !ok {
		t.Fatalf("не ожидали вытеснение долгоживущей записи")
	}
	if _, ok := store.Get("new"); !ok {
		t.Fatalf("ожидали сохранение новой записи")
	}
}

func TestGetOrComputeSingleProducer(t *testing.T) {
	store := NewStore[int](0)
	var calls atomic.Int64
	gate := make(chan struct{})

	const workers = 16
	results := make([]int, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(idx int) {
			defer wg.Done()
			value, err := store.GetOrCompute(context.Background(), "k", time.Minute, func(ctx context.Context) (int, error) {
				calls.Add(1)
				<-gate
				return 42, nil
			})
			if err != nil {
				t.Errorf("не ожидали ошибку: %v", err)
				return
			}
			results[idx] = value
		}(i)
	}

	// Даём горутинам собраться на одном ключе, затем открываем producer.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("ожидали ровно один вызов producer, получили %d", calls.Load())
	}
	for idx, value := range results {
		if value != 42 {
			t.Fatalf("горутина %d получила %d вместо 42", idx, value)
		}
	}
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	store := NewStore[int](0)
	boom := errors.New("provider down")
	var calls atomic.Int64

	_, err := store.GetOrCompute(context.Background(), "k", time.Minute, func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("ожидали ошибку producer, получили %v", err)
	}
	if _, ok := store.Get("k"); ok {
		t.Fatalf("ошибка не должна попадать в кэш")
	}

	value, err := store.GetOrCompute(context.Background(), "k", time.Minute, func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 7, nil
	})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if value != 7 {
		t.Fatalf("ожидали повторный вызов producer после ошибки")
	}
	if calls.Load() != 2 {
		t.Fatalf("ожидали 2 вызова producer, получили %d", calls.Load())
	}
}

func TestGetOrComputeErrorReleasesWaiters(t *testing.T) {
	store := NewStore[int](0)
	boom := errors.New("timeout")
	gate := make(chan struct{})

	const workers = 8
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := store.GetOrCompute(context.Background(), "k", time.Minute, func(ctx context.Context) (int, error) {
				<-gate
				return 0, boom
			})
			errCh <- err
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(gate)

	for i := 0; i < workers; i++ {
		select {
		case err := <-errCh:
			if !errors.Is(err, boom) {
				t.Fatalf("ожидали ошибку producer, получили %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("ожидающий %d завис после ошибки producer", i)
		}
	}
}

func TestGetOrComputeHitSkipsProducer(t *testing.T) {
	store := NewStore[int](0)
	store.Set("k", 5, time.Minute)
	value, err := store.GetOrCompute(context.Background(), "k", time.Minute, func(ctx context.Context) (int, error) {
		t.Fatalf("producer не должен вызываться при попадании")
		return 0, nil
	})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if value != 5 {
		t.Fatalf("ожидали 5, получили %d", value)
	}
}

func TestSweep(t *testing.T) {
	store := NewStore[string](0)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	store.Set("fresh", "a", time.Hour)
	store.Set("stale", "b", time.Minute)

	removed := store.Sweep(current.Add(30 * time.Minute))
	if removed != 1 {
		t.Fatalf("ожидали удаление 1 записи, удалено %d", removed)
	}
	if store.Len() != 1 {
		t.Fatalf("ожидали 1 оставшуюся запись")
	}
	if _, ok := store.Get("fresh"); !ok {
		t.Fatalf("свежая запись не должна удаляться")
	}
}
