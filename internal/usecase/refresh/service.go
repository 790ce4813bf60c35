package refresh

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"farcaster-pulse/internal/domain"
)

// Warmer прогревает кэш по каналу и окну.
type Warmer interface {
	Warm(ctx context.Context, channelID string, tr domain.TimeRange) error
}

// Sweeper удаляет истёкшие записи кэша.
type Sweeper interface {
	Sweep(now time.Time) int
}

// Service периодически прогревает кэш для каналов аллоулиста и подметает
// истёкшие записи. Ошибки прогрева логируются и не прерывают проход:
// следующий запрос пользователя просто построит выдачу сам.
type Service struct {
	registry domain.ChannelRegistry
	warmer   Warmer
	sweeper  Sweeper
	tr       domain.TimeRange
	log      zerolog.Logger
}

// NewService создаёт сервис обновления кэша.
func NewService(registry domain.ChannelRegistry, warmer Warmer, sweeper Sweeper, tr domain.TimeRange, logger zerolog.Logger) *Service {
	return &Service{registry: registry, warmer: warmer, sweeper: sweeper, tr: tr, log: logger}
}

// Run выполняет один проход прогрева и уборки.
func (s *Service) Run(ctx context.Context) {
	jobID := uuid.NewString()
	started := time.Now()

	warmed, failed := 0, 0
	for _, ch := range s.registry.Allowlisted() {
		if ctx.Err() != nil {
			s.log.Warn().Str("job_id", jobID).Msg("refresh: проход прерван")
			return
		}
		if err := s.warmer.Warm(ctx, ch.ID, s.tr); err != nil {
			failed++
			s.log.Warn().Err(err).Str("job_id", jobID).Str("channel", ch.ID).Msg("refresh: прогрев не удался")
			continue
		}
		warmed++
	}

	swept := s.sweeper.Sweep(time.Now())

	s.log.Info().
		Str("job_id", jobID).
		Int("warmed", warmed).
		Int("failed", failed).
		Int("swept", swept).
		Dur("took", time.Since(started)).
		Msg("refresh: проход завершён")
}
