package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"immo-parser-service/internal/contextkeys"
	"immo-parser-service/internal/core/changes"
	"immo-parser-service/internal/core/domain"
	"immo-parser-service/internal/core/port"
)

// ListingPipeline - ограниченный канал между обходом и sink с одним потребителем.
// Потребитель сравнивает объявление с сохраненной версией и отдает его в sink.
type ListingPipeline struct {
	events  chan domain.ListingEvent
	sink    port.ListingSinkPort
	history port.ListingHistoryPort
	phones  port.PhoneSinkPort
	clock   port.ClockPort
	logger  port.LoggerPort

	delivered atomic.Int64
	rejected  atomic.Int64

	closeOnce sync.Once
	done      chan struct{}
}

// NewListingPipeline создает пайплайн; phones и history могут быть nil
func NewListingPipeline(
	buffer int,
	sink port.ListingSinkPort,
	history port.ListingHistoryPort,
	phones port.PhoneSinkPort,
	clock port.ClockPort,
	logger port.LoggerPort,
) *ListingPipeline {
	if buffer <= 0 {
		buffer = 1
	}
	return &ListingPipeline{
		events:  make(chan domain.ListingEvent, buffer),
		sink:    sink,
		history: history,
		phones:  phones,
		clock:   clock,
		logger:  logger.WithFields(port.Fields{"component": "listing_pipeline"}),
		done:    make(chan struct{}),
	}
}

// Start запускает потребителя. Он работает до Close и дочитывает канал.
func (p *ListingPipeline) Start(ctx context.Context) error {
	// отмена ctx не должна терять объявления, уже стоящие в очереди
	consumeCtx := contextkeys.ContextWithLogger(context.WithoutCancel(ctx), p.logger)
	go func() {
		defer close(p.done)
		for event := range p.events {
			p.deliver(consumeCtx, event)
		}
	}()
	p.logger.Info("Listing pipeline started", port.Fields{"buffer": cap(p.events)})
	return nil
}

// Submit ставит объявление в очередь; блокируется, если очередь заполнена.
// После Close вызывать нельзя.
func (p *ListingPipeline) Submit(ctx context.Context, event domain.ListingEvent) error {
	select {
	case p.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close закрывает вход и ждет, пока потребитель отдаст все объявления
func (p *ListingPipeline) Close() error {
	p.closeOnce.Do(func() { close(p.events) })
	<-p.done
	p.logger.Info("Listing pipeline drained", port.Fields{
		"delivered": p.delivered.Load(),
		"rejected":  p.rejected.Load(),
	})
	return nil
}

// Delivered - сколько объявлений принял sink
func (p *ListingPipeline) Delivered() int64 {
	return p.delivered.Load()
}

func (p *ListingPipeline) deliver(ctx context.Context, event domain.ListingEvent) {
	listing := &event.Listing
	logger := p.logger.WithFields(port.Fields{"url": listing.URL, "cycle_id": event.CycleID.String()})

	var prior *domain.Listing
	if p.history != nil {
		var err error
		prior, err = p.history.LastVersion(ctx, listing.URL)
		if err != nil {
			// без истории считаем объявление новым
			logger.Warn("Could not load stored version", port.Fields{"error": err.Error()})
			prior = nil
		}
	}

	event.Change = changes.Detect(prior, *listing)
	if prior != nil && prior.FirstSeenAt != nil {
		listing.FirstSeenAt = prior.FirstSeenAt
	} else {
		now := p.clock.Now().UTC()
		listing.FirstSeenAt = &now
	}

	if err := p.sink.OnListingFound(ctx, event); err != nil {
		if errors.Is(err, domain.ErrSinkRejected) {
			p.rejected.Add(1)
			logger.Debug("Sink rejected listing", port.Fields{"reason": err.Error()})
			return
		}
		logger.Error("Sink failed to accept listing", fmt.Errorf("pipeline: %w", err), nil)
		return
	}
	p.delivered.Add(1)

	if event.Change.Label != "" {
		logger.Info("Listing changed", port.Fields{"label": event.Change.Label, "fields": event.Change.ChangedFields})
	} else if event.Change.IsNew {
		logger.Debug("New listing delivered", port.Fields{"price": listing.Price})
	}

	if p.phones != nil && listing.Phone != nil {
		p.phones.OnPhoneFound(ctx, listing.URL, *listing.Phone)
	}
}
