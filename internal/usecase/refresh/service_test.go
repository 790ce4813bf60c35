package refresh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"farcaster-pulse/internal/domain"
)

type stubRegistry struct {
	channels []domain.Channel
}

func (s *stubRegistry) IsAllowlisted(channelID string) bool { return true }
func (s *stubRegistry) Config(string) (domain.Channel, bool) {
	return domain.Channel{}, false
}
func (s *stubRegistry) Allowlisted() []domain.Channel { return s.channels }

type stubWarmer struct {
	warmed []string
	fail   map[string]error
}

func (s *stubWarmer) Warm(ctx context.Context, channelID string, tr domain.TimeRange) error {
	if err := s.fail[channelID]; err != nil {
		return err
	}
	s.warmed = append(s.warmed, channelID)
	return nil
}

type stubSweeper struct {
	swept int
}

func (s *stubSweeper) Sweep(now time.Time) int {
	s.swept++
	return 3
}

func TestRunWarmsAllChannels(t *testing.T) {
	registry := &stubRegistry{channels: []domain.Channel{
		{ID: "animenews", Allowlisted: true},
		{ID: "gamenews", Allowlisted: true},
	}}
	warmer := &stubWarmer{}
	sweeper := &stubSweeper{}
	service := NewService(registry, warmer, sweeper, domain.TimeRange24h, zerolog.Nop())

	service.Run(context.Background())

	if len(warmer.warmed) != 2 {
		t.Fatalf("ожидали прогрев 2 каналов, получили %d", len(warmer.warmed))
	}
	if sweeper.swept != 1 {
		t.Fatalf("ожидали один вызов уборки")
	}
}

func TestRunContinuesAfterFailure(t *testing.T) {
	registry := &stubRegistry{channels: []domain.Channel{
		{ID: "broken", Allowlisted: true},
		{ID: "animenews", Allowlisted: true},
	}}
	warmer := &stubWarmer{fail: map[string]error{"broken": errors.New("boom")}}
	service := NewService(registry, warmer, &stubSweeper{}, domain.TimeRange24h, zerolog.Nop())

	service.Run(context.Background())

	if len(warmer.warmed) != 1 || warmer.warmed[0] != "animenews" {
		t.Fatalf("ошибка одного канала не должна прерывать проход: %v", warmer.warmed)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	registry := &stubRegistry{channels: []domain.Channel{{ID: "animenews", Allowlisted: true}}}
	warmer := &stubWarmer{}
	sweeper := &stubSweeper{}
	service := NewService(registry, warmer, sweeper, domain.TimeRange24h, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	service.Run(ctx)

	if len(warmer.warmed) != 0 {
		t.Fatalf("не ожидали прогрев при отменённом контексте")
	}
	if sweeper.swept != 0 {
		t.Fatalf("не ожидали уборку при отменённом контексте")
	}
}
