package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimeRange задаёт скользящее окно выборки постов.
type TimeRange string

// Поддерживаемые окна времени.
const (
	TimeRange6h  TimeRange = "6h"
	TimeRange24h TimeRange = "24h"
	TimeRange7d  TimeRange = "7d"
	TimeRange30d TimeRange = "30d"
)

var timeRangeDurations = map[TimeRange]time.Duration{
	TimeRange6h:  6 * time.Hour,
	TimeRange24h: 24 * time.Hour,
	TimeRange7d:  7 * 24 * time.Hour,
	TimeRange30d: 30 * 24 * time.Hour,
}

// ParseTimeRange нормализует ввод к одному из перечисленных окон.
// Нераспознанное значение — ErrInvalidTimeRange, без молчаливого приведения.
func ParseTimeRange(raw string) (TimeRange, error) {
	tr := TimeRange(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := timeRangeDurations[tr]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeRange, raw)
	}
	return tr, nil
}

// Duration возвращает длительность окна.
func (tr TimeRange) Duration() time.Duration {
	return timeRangeDurations[tr]
}

// Since возвращает нижнюю границу окна относительно now.
func (tr TimeRange) Since(now time.Time) time.Time {
	return now.Add(-tr.Duration())
}
