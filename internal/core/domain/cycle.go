package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScrapeMode - режим цикла обхода
type ScrapeMode string

const (
	ModeQuick ScrapeMode = "quick"
	ModeFull  ScrapeMode = "full"
)

// ScrapeCycle - состояние текущего цикла планировщика
type ScrapeCycle struct {
	ID        uuid.UUID
	Mode      ScrapeMode
	Number    int
	StartedAt time.Time
	Running   bool
}

// Cursor - курсор пагинации одного фида
type Cursor struct {
	FeedKey  string
	NextPage int
}

// CycleStats - итоги одного цикла
type CycleStats struct {
	FeedsVisited    int
	PagesVisited    int
	Candidates      int
	ListingsEmitted int
	Blocked         int
	Skipped         int
	Errors          int
}

// Add суммирует статистику
func (s *CycleStats) Add(o CycleStats) {
	s.FeedsVisited += o.FeedsVisited
	s.PagesVisited += o.PagesVisited
	s.Candidates += o.Candidates
	s.ListingsEmitted += o.ListingsEmitted
	s.Blocked += o.Blocked
	s.Skipped += o.Skipped
	s.Errors += o.Errors
}
