package domain

import (
	"context"
	"time"
)

// CastFetcher выгружает посты канала у провайдера социального графа.
// Пустой канал — это успех с пустым срезом, а не ошибка.
type CastFetcher interface {
	FetchChannelCasts(ctx context.Context, channelID string, tr TimeRange) ([]Cast, error)
	FetchChannelInfo(ctx context.Context, channelID string) (ChannelInfo, error)
}

// ChannelRegistry отвечает за аллоулист и кастомизацию каналов.
type ChannelRegistry interface {
	IsAllowlisted(channelID string) bool
	Config(channelID string) (Channel, bool)
	Allowlisted() []Channel
}

// ResultCache хранит готовые выдачи с TTL и защитой от stampede.
type ResultCache interface {
	Get(key string) (AggregationResult, bool)
	Set(key string, value AggregationResult, ttl time.Duration)
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, producer func(ctx context.Context) (AggregationResult, error)) (AggregationResult, error)
}
