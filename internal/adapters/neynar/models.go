package neynar

import "time"

// feedResponse описывает ответ эндпоинта выдачи канала.
type feedResponse struct {
	Casts []castPayload `json:"casts"`
	Next  struct {
		Cursor string `json:"cursor"`
	} `json:"next"`
}

// castPayload описывает каст в ответе API.
type castPayload struct {
	Hash   string `json:"hash"`
	Author struct {
		FID         uint64 `json:"fid"`
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		PfpURL      string `json:"pfp_url"`
	} `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Reactions struct {
		LikesCount   uint64 `json:"likes_count"`
		RecastsCount uint64 `json:"recasts_count"`
	} `json:"reactions"`
	Replies struct {
		Count uint64 `json:"count"`
	} `json:"replies"`
	Embeds []embedPayload `json:"embeds"`
}

// embedPayload описывает вложение: URL либо ссылка на каст.
type embedPayload struct {
	URL    string `json:"url,omitempty"`
	CastID *struct {
		FID  uint64 `json:"fid"`
		Hash string `json:"hash"`
	} `json:"cast_id,omitempty"`
}

// channelResponse описывает ответ эндпоинта метаданных канала.
type channelResponse struct {
	Channel struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Description   string `json:"description"`
		ImageURL      string `json:"image_url"`
		FollowerCount uint64 `json:"follower_count"`
	} `json:"channel"`
}

// apiError описывает тело ошибки API.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
