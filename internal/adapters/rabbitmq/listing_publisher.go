package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"immo-parser-service/internal/constants"
	"immo-parser-service/internal/contextkeys"
	"immo-parser-service/internal/core/domain"
	"immo-parser-service/internal/core/port"
)

const publishTimeout = 10 * time.Second

// Publisher - то, что адаптерам нужно от rabbitmq_producer.Publisher
type Publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// ListingPublisher публикует найденные объявления как ListingFoundEvent
type ListingPublisher struct {
	producer   Publisher
	contracts  *Contracts
	routingKey string
	now        func() time.Time
}

func NewListingPublisher(producer Publisher, contracts *Contracts) (*ListingPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("producer cannot be nil")
	}
	if contracts == nil {
		return nil, fmt.Errorf("contracts cannot be nil")
	}
	return &ListingPublisher{
		producer:   producer,
		contracts:  contracts,
		routingKey: constants.RoutingKeyListingFound,
		now:        time.Now,
	}, nil
}

// OnListingFound реализует port.ListingSinkPort.
// Событие, не прошедшее схему, считается отвергнутым, а не ошибкой доставки.
func (p *ListingPublisher) OnListingFound(ctx context.Context, event domain.ListingEvent) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "ListingPublisher",
		"routing_key": p.routingKey,
		"url":         event.Listing.URL,
	})

	body, err := json.Marshal(toListingFoundEventDTO(event))
	if err != nil {
		return fmt.Errorf("failed to marshal listing event for %s: %w", event.Listing.URL, err)
	}
	if err := p.contracts.Validate(constants.EventTypeListingFound, constants.EventVersion, body); err != nil {
		logger.Warn("Listing event violates contract", port.Fields{"error": err.Error()})
		return fmt.Errorf("%w: %v", domain.ErrSinkRejected, err)
	}

	msg := newMessage(ctx, constants.EventTypeListingFound, body, p.now())
	msg.Headers["x-cycle-id"] = event.CycleID.String()
	msg.Headers["x-scrape-mode"] = string(event.Mode)

	if err := publish(ctx, p.producer, p.routingKey, msg); err != nil {
		logger.Error("Failed to publish listing event", err, nil)
		return err
	}
	logger.Debug("Listing event published", port.Fields{"message_id": msg.MessageId, "label": event.Change.Label})
	return nil
}

func newMessage(ctx context.Context, eventType string, body []byte, ts time.Time) amqp.Publishing {
	msg := amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    ts,
		Headers: amqp.Table{
			"event-type":    eventType,
			"event-version": constants.EventVersion,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}
	return msg
}

func publish(ctx context.Context, producer Publisher, routingKey string, msg amqp.Publishing) error {
	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return producer.Publish(publishCtx, routingKey, msg)
}
