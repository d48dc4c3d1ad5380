package port

import (
	"context"
	"time"
)

// FetchRequest - параметры одного исходящего запроса
type FetchRequest struct {
	URL     string
	Cookies string
	Headers map[string]string
	Timeout time.Duration
}

// FetchResponse - сырое тело страницы и новые cookies
type FetchResponse struct {
	Body       string
	SetCookies []string
	Status     int
}

// FetcherPort выполняет один запрос без повторов.
// Сетевые ошибки, таймаут и статус вне 2xx возвращаются как ошибки.
type FetcherPort interface {
	Fetch(ctx context.Context, req FetchRequest) (*FetchResponse, error)
}
