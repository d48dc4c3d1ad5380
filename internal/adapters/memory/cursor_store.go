package memory

import (
	"context"
	"fmt"
	"sync"
)

// CursorStore - курсоры в памяти процесса, теряются при перезапуске
type CursorStore struct {
	mu    sync.RWMutex
	pages map[string]int
}

func NewCursorStore() *CursorStore {
	return &CursorStore{pages: make(map[string]int)}
}

func (s *CursorStore) GetNextPage(_ context.Context, feedKey string, defaultPage int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if page, ok := s.pages[feedKey]; ok {
		return page, nil
	}
	return defaultPage, nil
}

func (s *CursorStore) SetNextPage(_ context.Context, feedKey string, page int) error {
	if page < 1 {
		return fmt.Errorf("memory cursor store: invalid page %d for '%s'", page, feedKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[feedKey] = page
	return nil
}

// Snapshot возвращает копию всех курсоров
func (s *CursorStore) Snapshot() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.pages))
	for k, v := range s.pages {
		out[k] = v
	}
	return out
}
