package channels

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"farcaster-pulse/internal/domain"
)

// Registry хранит аллоулист каналов. Таблица неизменяема после загрузки,
// поэтому чтения не требуют блокировок.
type Registry struct {
	byID  map[string]domain.Channel
	order []string
}

var _ domain.ChannelRegistry = (*Registry)(nil)

// defaultChannels используется, когда файл аллоулиста не задан.
func defaultChannels() []domain.Channel {
	return []domain.Channel{
		{ID: "animenews", Allowlisted: true},
	}
}

// NewRegistry создаёт реестр из списка каналов.
func NewRegistry(list []domain.Channel) *Registry {
	byID := make(map[string]domain.Channel, len(list))
	order := make([]string, 0, len(list))
	for _, ch := range list {
		if ch.ID == "" {
			continue
		}
		if _, exists := byID[ch.ID]; !exists {
			order = append(order, ch.ID)
		}
		byID[ch.ID] = ch
	}
	sort.Strings(order)
	return &Registry{byID: byID, order: order}
}

// Load читает аллоулист из JSON-файла. Пустой путь — встроенный список.
func Load(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(defaultChannels()), nil
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение аллоулиста: %w", err)
	}
	var list []domain.Channel
	if err := json.Unmarshal(payload, &list); err != nil {
		return nil, fmt.Errorf("разбор аллоулиста: %w", err)
	}
	return NewRegistry(list), nil
}

// IsAllowlisted проверяет, входит ли канал в аллоулист.
// Неизвестный канал — false, без ошибок.
func (r *Registry) IsAllowlisted(channelID string) bool {
	ch, ok := r.byID[channelID]
	return ok && ch.Allowlisted
}

// Config возвращает конфигурацию канала, если она есть.
func (r *Registry) Config(channelID string) (domain.Channel, bool) {
	ch, ok := r.byID[channelID]
	return ch, ok
}

// Allowlisted возвращает каналы из аллоулиста в стабильном порядке.
func (r *Registry) Allowlisted() []domain.Channel {
	out := make([]domain.Channel, 0, len(r.order))
	for _, id := range r.order {
		if ch := r.byID[id]; ch.Allowlisted {
			out = append(out, ch)
		}
	}
	return out
}
