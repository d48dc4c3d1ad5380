package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSinkRejected - sink отказался принять объявление (например, дубликат).
	// Ядро не считает это ошибкой.
	ErrSinkRejected = errors.New("listing rejected by sink")

	ErrTimeout          = errors.New("request timed out")
	ErrNoPrice          = errors.New("no valid price")
	ErrImplausiblePrice = errors.New("implausible price")
	ErrImplausibleArea  = errors.New("implausible area")
	ErrNotPrivate       = errors.New("listing is not classified as private")
	ErrRemoved          = errors.New("listing removed")
	ErrNoDistrict       = errors.New("district could not be resolved")
)

// StatusError - ответ сервера с кодом вне 2xx
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.Code, e.URL)
}

// IsRateLimited сообщает, что источник ответил 429
func IsRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == 429
}
