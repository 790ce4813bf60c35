package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"

	"farcaster-pulse/internal/domain"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	Popularity struct {
		WeightLikes   float64 `envconfig:"WEIGHT_LIKES" default:"1.0"`
		WeightRecasts float64 `envconfig:"WEIGHT_RECASTS" default:"1.2"`
		WeightReplies float64 `envconfig:"WEIGHT_REPLIES" default:"1.3"`
	} `envconfig:""`

	Display struct {
		PostsPerPage     int    `envconfig:"POSTS_PER_PAGE" default:"10"`
		DefaultTimeRange string `envconfig:"DEFAULT_TIME_RANGE" default:"24h"`
	} `envconfig:""`

	Cache struct {
		TTL        time.Duration `envconfig:"CACHE_TTL" default:"1h"`
		MaxEntries int           `envconfig:"CACHE_MAX_ENTRIES" default:"256"`
	} `envconfig:""`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	Neynar struct {
		APIKey   string        `envconfig:"NEYNAR_API_KEY"`
		BaseURL  string        `envconfig:"NEYNAR_BASE_URL" default:"https://api.neynar.com"`
		Timeout  time.Duration `envconfig:"NEYNAR_TIMEOUT" default:"10s"`
		RetryMax int           `envconfig:"NEYNAR_RETRY_MAX" default:"3"`
	} `envconfig:""`

	ChannelsFile string `envconfig:"CHANNELS_FILE"`

	RefreshSpec string `envconfig:"REFRESH_SPEC" default:"@every 15m"`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	if cfg.Popularity.WeightLikes < 0 || cfg.Popularity.WeightRecasts < 0 || cfg.Popularity.WeightReplies < 0 {
		log.Fatalf("веса популярности должны быть неотрицательными")
	}
	if _, err := domain.ParseTimeRange(cfg.Display.DefaultTimeRange); err != nil {
		log.Fatalf("некорректное окно времени по умолчанию: %v", err)
	}
	return cfg
}

// Weights возвращает веса популярности как доменную структуру.
func (c AppConfig) Weights() domain.Weights {
	return domain.Weights{
		Likes:   c.Popularity.WeightLikes,
		Recasts: c.Popularity.WeightRecasts,
		Replies: c.Popularity.WeightReplies,
	}
}
