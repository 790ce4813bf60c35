package popularity

import (
	"sort"

	"farcaster-pulse/internal/domain"
)

// Score вычисляет оценку популярности как взвешенную сумму счётчиков.
// Чистая детерминированная функция: одинаковые входы дают побитово
// одинаковый результат, входы не изменяются.
func Score(e domain.CastEngagement, w domain.Weights) float64 {
	return float64(e.Likes)*w.Likes + float64(e.Recasts)*w.Recasts + float64(e.Replies)*w.Replies
}

// SortScored упорядочивает касты по строгому полному порядку: оценка по
// убыванию, затем время публикации по убыванию, затем хэш по возрастанию.
// Полный порядок делает выдачу воспроизводимой между запусками.
func SortScored(posts []domain.ScoredCast) {
	sort.Slice(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if a.PopularityScore != b.PopularityScore {
			return a.PopularityScore > b.PopularityScore
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.Hash < b.Hash
	})
}
