package fanout

import (
	"context"
	"errors"
	"fmt"

	"immo-parser-service/internal/core/domain"
	"immo-parser-service/internal/core/port"
)

// ListingSink передает событие всем sink'ам по порядку.
// Отказ одного sink'а не мешает остальным.
type ListingSink struct {
	sinks []port.ListingSinkPort
}

func NewListingSink(sinks ...port.ListingSinkPort) (*ListingSink, error) {
	active := make([]port.ListingSinkPort, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("fanout: at least one listing sink is required")
	}
	return &ListingSink{sinks: active}, nil
}

// OnListingFound: реальные ошибки важнее отказов; если были только отказы,
// возвращается первый из них.
func (f *ListingSink) OnListingFound(ctx context.Context, event domain.ListingEvent) error {
	var failures []error
	var rejected error
	for _, s := range f.sinks {
		err := s.OnListingFound(ctx, event)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrSinkRejected):
			if rejected == nil {
				rejected = err
			}
		default:
			failures = append(failures, err)
		}
	}
	if len(failures) > 0 {
		return errors.Join(failures...)
	}
	return rejected
}

// PhoneSink рассылает найденный телефон всем получателям
type PhoneSink struct {
	sinks []port.PhoneSinkPort
}

func NewPhoneSink(sinks ...port.PhoneSinkPort) *PhoneSink {
	active := make([]port.PhoneSinkPort, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return &PhoneSink{sinks: active}
}

func (f *PhoneSink) OnPhoneFound(ctx context.Context, url string, phone string) {
	for _, s := range f.sinks {
		s.OnPhoneFound(ctx, url, phone)
	}
}

// Len - число подключенных получателей
func (f *PhoneSink) Len() int { return len(f.sinks) }
