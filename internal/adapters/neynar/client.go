package neynar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry-go"
	"github.com/rs/zerolog"

	"farcaster-pulse/internal/domain"
	"farcaster-pulse/internal/infra/metrics"
)

const (
	defaultBaseURL = "https://api.neynar.com"
	feedPageLimit  = 100
	maxFeedPages   = 5
)

// Client выполняет запросы к Farcaster API Neynar и реализует
// domain.CastFetcher. Политика повторов живёт здесь, а не в конвейере.
type Client struct {
	http     *http.Client
	baseURL  string
	apiKey   string
	retryMax uint
	log      zerolog.Logger
}

var _ domain.CastFetcher = (*Client)(nil)

// NewClient создаёт клиента Neynar.
func NewClient(apiKey, baseURL string, timeout time.Duration, retryMax int, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if retryMax <= 0 {
		retryMax = 1
	}
	return &Client{
		http:     &http.Client{Timeout: timeout + 5*time.Second},
		baseURL:  baseURL,
		apiKey:   apiKey,
		retryMax: uint(retryMax),
		log:      logger,
	}
}

// FetchChannelCasts выгружает касты канала за окно времени. Пустой канал —
// успех с пустым срезом. Окно применяется на стороне клиента при обходе
// курсора выдачи.
func (c *Client) FetchChannelCasts(ctx context.Context, channelID string, tr domain.TimeRange) ([]domain.Cast, error) {
	since := tr.Since(time.Now().UTC())
	casts := make([]domain.Cast, 0, feedPageLimit)

	cursor := ""
	for page := 0; page < maxFeedPages; page++ {
		feed, err := c.fetchFeedPage(ctx, channelID, cursor)
		if err != nil {
			return nil, err
		}

		reachedWindowEnd := false
		for _, payload := range feed.Casts {
			if payload.Timestamp.Before(since) {
				reachedWindowEnd = true
				continue
			}
			casts = append(casts, mapCast(payload))
		}

		cursor = feed.Next.Cursor
		if cursor == "" || reachedWindowEnd {
			break
		}
	}
	return casts, nil
}

// FetchChannelInfo выгружает метаданные канала.
func (c *Client) FetchChannelInfo(ctx context.Context, channelID string) (domain.ChannelInfo, error) {
	endpoint := fmt.Sprintf("%s/v2/farcaster/channel?id=%s", c.baseURL, url.QueryEscape(channelID))
	var decoded channelResponse
	if err := c.getJSON(ctx, "channel_info", endpoint, &decoded); err != nil {
		return domain.ChannelInfo{}, err
	}
	return domain.ChannelInfo{
		ID:            decoded.Channel.ID,
		Name:          decoded.Channel.Name,
		Description:   decoded.Channel.Description,
		ImageURL:      decoded.Channel.ImageURL,
		FollowerCount: decoded.Channel.FollowerCount,
	}, nil
}

func (c *Client) fetchFeedPage(ctx context.Context, channelID, cursor string) (feedResponse, error) {
	query := url.Values{}
	query.Set("channel_ids", channelID)
	query.Set("limit", strconv.Itoa(feedPageLimit))
	query.Set("with_replies", "false")
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	endpoint := c.baseURL + "/v2/farcaster/feed/channels?" + query.Encode()

	var decoded feedResponse
	if err := c.getJSON(ctx, "feed_channels", endpoint, &decoded); err != nil {
		return feedResponse{}, err
	}
	return decoded, nil
}

// getJSON выполняет GET с повторами и раскладывает ответ в out.
// Повторяются только сбои транспорта и 5xx; прочие статусы — сразу ошибка.
func (c *Client) getJSON(ctx context.Context, operation, endpoint string, out any) error {
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("создание запроса: %w", err))
			}
			req.Header.Set("Accept", "application/json")
			if c.apiKey != "" {
				req.Header.Set("x-api-key", c.apiKey)
			}

			start := time.Now()
			resp, err := c.http.Do(req)
			metrics.ObserveNetworkRequest("neynar", operation, "api", start, err)
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
				apiErr := decodeAPIError(body)
				wrapped := fmt.Errorf("%w: HTTP %d%s", domain.ErrUpstreamUnavailable, resp.StatusCode, apiErr)
				if resp.StatusCode >= http.StatusInternalServerError {
					return wrapped
				}
				return retry.Unrecoverable(wrapped)
			}

			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("%w: разбор ответа: %v", domain.ErrUpstreamUnavailable, err))
			}
			return nil
		},
		retry.Attempts(c.retryMax),
		retry.Delay(200*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warn().Uint("attempt", n).Err(err).Str("operation", operation).Msg("neynar: повтор запроса")
		}),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			metrics.IncUpstreamError("timeout")
			return fmt.Errorf("%w: %s", domain.ErrUpstreamTimeout, operation)
		}
		metrics.IncUpstreamError("unavailable")
		return err
	}
	return nil
}

func decodeAPIError(body []byte) string {
	var decoded apiError
	if err := json.Unmarshal(body, &decoded); err != nil || decoded.Message == "" {
		return ""
	}
	return ": " + decoded.Message
}

func mapCast(payload castPayload) domain.Cast {
	cast := domain.Cast{
		Hash: payload.Hash,
		Author: domain.CastAuthor{
			FID:         payload.Author.FID,
			Username:    payload.Author.Username,
			DisplayName: payload.Author.DisplayName,
			PfpURL:      payload.Author.PfpURL,
		},
		Text:      payload.Text,
		Timestamp: payload.Timestamp,
		Engagement: domain.CastEngagement{
			Likes:   payload.Reactions.LikesCount,
			Recasts: payload.Reactions.RecastsCount,
			Replies: payload.Replies.Count,
		},
		URL: castURL(payload),
	}
	for _, embed := range payload.Embeds {
		mapped := domain.CastEmbed{URL: embed.URL}
		if embed.CastID != nil {
			mapped.CastID = &domain.EmbeddedCastID{FID: embed.CastID.FID, Hash: embed.CastID.Hash}
		}
		cast.Embeds = append(cast.Embeds, mapped)
	}
	return cast
}

// castURL строит ссылку на каст в Warpcast по короткому хэшу.
func castURL(payload castPayload) string {
	hash := payload.Hash
	if len(hash) > 10 {
		hash = hash[:10]
	}
	return fmt.Sprintf("https://warpcast.com/%s/%s", payload.Author.Username, hash)
}
