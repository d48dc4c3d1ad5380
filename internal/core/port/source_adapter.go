package port

import "immo-parser-service/internal/core/domain"

// SourceAdapter - общий контракт для всех маркетплейсов.
// Адаптер ничего не загружает сам: он строит URL и разбирает тела страниц.
type SourceAdapter interface {
	Name() domain.Source

	// ListFeeds возвращает фиды в фиксированном порядке обхода
	ListFeeds() []domain.Feed

	BuildPageURL(feed domain.Feed, page int) (string, error)

	// ExtractCandidates разбирает страницу выдачи
	ExtractCandidates(body string, feed domain.Feed) ([]domain.Candidate, error)

	// ExtractDetail разбирает детальную страницу и классифицирует продавца
	ExtractDetail(body string, feed domain.Feed, detailURL string) (domain.DetailResult, error)
}
