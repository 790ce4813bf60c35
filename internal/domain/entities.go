package domain

import "time"

// CastAuthor описывает автора каста в Farcaster.
type CastAuthor struct {
	FID         uint64 `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	PfpURL      string `json:"pfpUrl"`
}

// CastEngagement содержит счётчики вовлечённости каста.
// Снимок на момент выборки, после создания не изменяется.
type CastEngagement struct {
	Likes   uint64 `json:"likes"`
	Recasts uint64 `json:"recasts"`
	Replies uint64 `json:"replies"`
}

// EmbeddedCastID указывает на процитированный каст.
type EmbeddedCastID struct {
	FID  uint64 `json:"fid"`
	Hash string `json:"hash"`
}

// CastEmbed представляет вложение каста: либо URL, либо ссылка на другой каст.
type CastEmbed struct {
	URL    string          `json:"url,omitempty"`
	CastID *EmbeddedCastID `json:"castId,omitempty"`
}

// Cast представляет сырой пост канала, полученный от провайдера.
type Cast struct {
	Hash       string         `json:"hash"`
	Author     CastAuthor     `json:"author"`
	Text       string         `json:"text"`
	Timestamp  time.Time      `json:"timestamp"`
	Engagement CastEngagement `json:"engagement"`
	URL        string         `json:"url"`
	Embeds     []CastEmbed    `json:"embeds,omitempty"`
}

// ScoredCast хранит каст вместе с вычисленной оценкой популярности.
// PopularityScore выводится из Engagement и весов, отдельно не задаётся.
type ScoredCast struct {
	Cast
	PopularityScore float64 `json:"popularityScore"`
}

// AggregationResult представляет итоговую выдачу по каналу за окно времени.
// Posts отсортированы по оценке по убыванию, при равенстве — по времени
// публикации по убыванию, затем по хэшу по возрастанию.
type AggregationResult struct {
	ChannelID  string       `json:"channelId"`
	TimeRange  TimeRange    `json:"timeRange"`
	Posts      []ScoredCast `json:"posts"`
	ComputedAt time.Time    `json:"computedAt"`
}

// Weights задаёт веса сигналов вовлечённости. Все значения неотрицательны,
// после загрузки конфигурации не изменяются. Нулевой вес полностью
// отключает вклад сигнала.
type Weights struct {
	Likes   float64
	Recasts float64
	Replies float64
}

// ChannelCustomization содержит переопределения оформления канала.
// nil означает «использовать значение из Farcaster».
type ChannelCustomization struct {
	BackgroundImage *string `json:"backgroundImage"`
	Description     *string `json:"description"`
}

// Channel описывает канал из аллоулиста. Загружается один раз при старте,
// далее только для чтения.
type Channel struct {
	ID            string               `json:"id"`
	Allowlisted   bool                 `json:"allowlisted"`
	Customization ChannelCustomization `json:"customization"`
}

// ChannelInfo содержит метаданные канала со стороны провайдера.
type ChannelInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ImageURL      string `json:"imageUrl,omitempty"`
	FollowerCount uint64 `json:"followerCount,omitempty"`
}

// ChannelSummary описывает канал для публичного списка каналов:
// данные реестра, обогащённые метаданными провайдера.
type ChannelSummary struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	ImageURL      string               `json:"imageUrl,omitempty"`
	FollowerCount uint64               `json:"followerCount,omitempty"`
	Customization ChannelCustomization `json:"customization"`
}

// ErrorResponse описывает структурированную ошибку для клиента.
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}
