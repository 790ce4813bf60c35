package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"farcaster-pulse/internal/domain"
	httpinfra "farcaster-pulse/internal/infra/http"
)

// PopularityService описывает часть сервиса популярности, нужную обработчикам.
type PopularityService interface {
	PopularCasts(ctx context.Context, channelID, timeRange string, page int) (domain.AggregationResult, error)
	ChannelList(ctx context.Context) []domain.ChannelSummary
}

// Handler обслуживает публичный HTTP API.
type Handler struct {
	popularity   PopularityService
	defaultRange string
	log          zerolog.Logger
}

// NewHandler создаёт обработчик.
func NewHandler(popularity PopularityService, defaultRange string, logger zerolog.Logger) *Handler {
	return &Handler{popularity: popularity, defaultRange: defaultRange, log: logger}
}

// Register вешает маршруты на роутер.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/v1/posts", h.handlePopularPosts)
	r.Get("/api/v1/channels", h.handleChannels)
	r.Get("/healthz", h.handleHealth)
}

// channelsResponse описывает конверт списка каналов.
type channelsResponse struct {
	Channels []domain.ChannelSummary `json:"channels"`
}

func (h *Handler) handlePopularPosts(w http.ResponseWriter, r *http.Request) {
	channelID := strings.TrimSpace(r.URL.Query().Get("channel"))
	if channelID == "" {
		httpinfra.WriteError(w, "invalid_channel", "параметр channel обязателен", http.StatusBadRequest)
		return
	}

	timeRange := r.URL.Query().Get("range")
	if timeRange == "" {
		timeRange = h.defaultRange
	}

	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httpinfra.WriteError(w, "invalid_page", "параметр page должен быть неотрицательным числом", http.StatusBadRequest)
			return
		}
		page = parsed
	}

	result, err := h.popularity.PopularCasts(r.Context(), channelID, timeRange, page)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleChannels(w http.ResponseWriter, r *http.Request) {
	httpinfra.WriteJSON(w, http.StatusOK, channelsResponse{Channels: h.popularity.ChannelList(r.Context())})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpinfra.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeDomainError переводит доменные ошибки в структурированные ответы.
// Наружу уходит только стабильный машинный код и человекочитаемое сообщение.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTimeRange):
		httpinfra.WriteError(w, "invalid_time_range", "окно времени должно быть одним из: 6h, 24h, 7d, 30d", http.StatusBadRequest)
	case errors.Is(err, domain.ErrChannelNotAllowed):
		httpinfra.WriteError(w, "channel_not_allowed", "канал не обслуживается", http.StatusNotFound)
	case errors.Is(err, domain.ErrUpstreamTimeout):
		httpinfra.WriteError(w, "upstream_timeout", "провайдер данных не ответил вовремя", http.StatusGatewayTimeout)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		httpinfra.WriteError(w, "upstream_unavailable", "провайдер данных недоступен", http.StatusBadGateway)
	default:
		h.log.Error().Err(err).Str("request_id", httpinfra.RequestID(r)).Msg("rest: внутренняя ошибка")
		httpinfra.WriteError(w, "internal_error", "внутренняя ошибка сервиса", http.StatusInternalServerError)
	}
}
