package httpfetcher

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"immo-parser-service/internal/core/port"
)

// Session - общие cookies и счетчик запросов.
// Новые Set-Cookie перезаписывают старые значения (последний победил).
type Session struct {
	mu       sync.Mutex
	names    []string
	values   map[string]string
	requests uint64
}

func NewSession() *Session {
	return &Session{values: make(map[string]string)}
}

// CookieHeader собирает значение заголовка Cookie
func (s *Session) CookieHeader() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	parts := make([]string, 0, len(s.names))
	for _, name := range s.names {
		parts = append(parts, name+"="+s.values[name])
	}
	return strings.Join(parts, "; ")
}

// Merge разбирает Set-Cookie ответа
func (s *Session) Merge(setCookies []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, raw := range setCookies {
		cookie, err := http.ParseSetCookie(raw)
		if err != nil {
			continue
		}
		if _, ok := s.values[cookie.Name]; !ok {
			s.names = append(s.names, cookie.Name)
		}
		s.values[cookie.Name] = cookie.Value
	}
}

func (s *Session) countRequest() {
	s.mu.Lock()
	s.requests++
	s.mu.Unlock()
}

// Requests - сколько запросов прошло через сессию
func (s *Session) Requests() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// SessionFetcher подставляет cookies сессии и сохраняет новые
type SessionFetcher struct {
	next    port.FetcherPort
	session *Session
}

func NewSessionFetcher(next port.FetcherPort, session *Session) *SessionFetcher {
	return &SessionFetcher{next: next, session: session}
}

func (f *SessionFetcher) Fetch(ctx context.Context, req port.FetchRequest) (*port.FetchResponse, error) {
	if req.Cookies == "" {
		req.Cookies = f.session.CookieHeader()
	}
	f.session.countRequest()
	resp, err := f.next.Fetch(ctx, req)
	if resp != nil {
		f.session.Merge(resp.SetCookies)
	}
	return resp, err
}

// Session возвращает состояние сессии
func (f *SessionFetcher) Session() *Session {
	return f.session
}
