package popularity

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"farcaster-pulse/internal/domain"
	"farcaster-pulse/internal/infra/metrics"
)

// Service реализует конвейер агрегации популярных кастов: проверка канала,
// выборка у провайдера, скоринг, сортировка, пагинация и кэширование.
// Между вызовами состояния не хранит, иллюзию персистентности даёт кэш.
type Service struct {
	registry     domain.ChannelRegistry
	fetcher      domain.CastFetcher
	cache        domain.ResultCache
	weights      domain.Weights
	pageSize     int
	ttl          time.Duration
	fetchTimeout time.Duration
	log          zerolog.Logger
	now          func() time.Time
}

// NewService создаёт сервис популярности.
func NewService(registry domain.ChannelRegistry, fetcher domain.CastFetcher, cache domain.ResultCache, weights domain.Weights, pageSize int, ttl, fetchTimeout time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		registry:     registry,
		fetcher:      fetcher,
		cache:        cache,
		weights:      weights,
		pageSize:     pageSize,
		ttl:          ttl,
		fetchTimeout: fetchTimeout,
		log:          logger,
		now:          time.Now,
	}
}

// CacheKey сериализует пару (канал, окно) в ключ кэша.
func CacheKey(channelID string, tr domain.TimeRange) string {
	return channelID + ":" + string(tr)
}

// PopularCasts возвращает страницу популярных кастов канала за окно времени.
// Ошибки валидации и провайдера никогда не кэшируются; окно нормализуется
// до использования в ключе кэша. Страницы нумеруются с нуля, страница за
// пределами выдачи — пустой список, а не ошибка.
func (s *Service) PopularCasts(ctx context.Context, channelID, timeRange string, page int) (domain.AggregationResult, error) {
	tr, err := domain.ParseTimeRange(timeRange)
	if err != nil {
		return domain.AggregationResult{}, err
	}
	if !s.registry.IsAllowlisted(channelID) {
		return domain.AggregationResult{}, fmt.Errorf("%w: %s", domain.ErrChannelNotAllowed, channelID)
	}

	metrics.IncPostsRequest(channelID, string(tr))

	result, err := s.cache.GetOrCompute(ctx, CacheKey(channelID, tr), s.ttl, func(ctx context.Context) (domain.AggregationResult, error) {
		return s.build(ctx, channelID, tr)
	})
	if err != nil {
		return domain.AggregationResult{}, err
	}

	return paginate(result, page, s.pageSize), nil
}

// build выполняет один прогон конвейера без участия кэша.
func (s *Service) build(ctx context.Context, channelID string, tr domain.TimeRange) (domain.AggregationResult, error) {
	start := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()
	casts, err := s.fetcher.FetchChannelCasts(fetchCtx, channelID, tr)
	if err != nil {
		// Отсутствие данных и ошибка выборки — разные исходы: частичных
		// результатов и деградации до пустого списка здесь нет.
		return domain.AggregationResult{}, fmt.Errorf("выборка кастов %s: %w", channelID, err)
	}

	scored := make([]domain.ScoredCast, 0, len(casts))
	for _, cast := range casts {
		scored = append(scored, domain.ScoredCast{
			Cast:            cast,
			PopularityScore: Score(cast.Engagement, s.weights),
		})
	}
	SortScored(scored)

	metrics.AggregationBuildSeconds.Observe(time.Since(start).Seconds())
	s.log.Debug().Str("channel", channelID).Str("range", string(tr)).Int("posts", len(scored)).Msg("popularity: выдача построена")

	return domain.AggregationResult{
		ChannelID:  channelID,
		TimeRange:  tr,
		Posts:      scored,
		ComputedAt: s.now().UTC(),
	}, nil
}

// Warm прогревает кэш по каналу и окну, не возвращая страницу.
func (s *Service) Warm(ctx context.Context, channelID string, tr domain.TimeRange) error {
	if !s.registry.IsAllowlisted(channelID) {
		return fmt.Errorf("%w: %s", domain.ErrChannelNotAllowed, channelID)
	}
	_, err := s.cache.GetOrCompute(ctx, CacheKey(channelID, tr), s.ttl, func(ctx context.Context) (domain.AggregationResult, error) {
		return s.build(ctx, channelID, tr)
	})
	return err
}

// ChannelList возвращает каналы аллоулиста, обогащённые метаданными
// провайдера. Обогащение — лучшая попытка: при ошибке отдаются данные
// реестра. Переопределение из кастомизации имеет приоритет, nil означает
// «взять значение из Farcaster» — развилка разрешается здесь, а не в
// обработчиках.
func (s *Service) ChannelList(ctx context.Context) []domain.ChannelSummary {
	allowlisted := s.registry.Allowlisted()
	out := make([]domain.ChannelSummary, 0, len(allowlisted))
	for _, ch := range allowlisted {
		summary := domain.ChannelSummary{
			ID:            ch.ID,
			Name:          ch.ID,
			Customization: ch.Customization,
		}
		infoCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		info, err := s.fetcher.FetchChannelInfo(infoCtx, ch.ID)
		cancel()
		if err != nil {
			s.log.Warn().Err(err).Str("channel", ch.ID).Msg("popularity: метаданные канала недоступны")
		} else {
			summary.Name = info.Name
			summary.Description = info.Description
			summary.ImageURL = info.ImageURL
			summary.FollowerCount = info.FollowerCount
		}
		if ch.Customization.Description != nil {
			summary.Description = *ch.Customization.Description
		}
		out = append(out, summary)
	}
	return out
}

// paginate вырезает страницу из готовой выдачи. Кэш хранит полную выдачу,
// поэтому все страницы делят одну запись.
func paginate(result domain.AggregationResult, page, size int) domain.AggregationResult {
	if page < 0 {
		page = 0
	}
	out := result
	if size <= 0 {
		return out
	}
	startIdx := page * size
	if startIdx >= len(result.Posts) {
		out.Posts = []domain.ScoredCast{}
		return out
	}
	endIdx := startIdx + size
	if endIdx > len(result.Posts) {
		endIdx = len(result.Posts)
	}
	out.Posts = result.Posts[startIdx:endIdx]
	return out
}
