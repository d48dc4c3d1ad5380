package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"immo-parser-service/internal/constants"
	"immo-parser-service/internal/contextkeys"
	"immo-parser-service/internal/core/port"
)

// PhonePublisher отправляет найденные телефоны отдельным событием.
// Ошибки только логируются: потеря телефона не должна задерживать объявления.
type PhonePublisher struct {
	producer   Publisher
	contracts  *Contracts
	routingKey string
	now        func() time.Time
}

func NewPhonePublisher(producer Publisher, contracts *Contracts) (*PhonePublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("producer cannot be nil")
	}
	if contracts == nil {
		return nil, fmt.Errorf("contracts cannot be nil")
	}
	return &PhonePublisher{
		producer:   producer,
		contracts:  contracts,
		routingKey: constants.RoutingKeyPhoneFound,
		now:        time.Now,
	}, nil
}

// OnPhoneFound реализует port.PhoneSinkPort
func (p *PhonePublisher) OnPhoneFound(ctx context.Context, url string, phone string) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PhonePublisher",
		"routing_key": p.routingKey,
		"url":         url,
	})

	body, err := json.Marshal(PhoneFoundEventDTO{URL: url, Phone: phone})
	if err != nil {
		logger.Error("Failed to marshal phone event", err, nil)
		return
	}
	if err := p.contracts.Validate(constants.EventTypePhoneFound, constants.EventVersion, body); err != nil {
		logger.Warn("Phone event violates contract", port.Fields{"error": err.Error()})
		return
	}
	msg := newMessage(ctx, constants.EventTypePhoneFound, body, p.now())
	if err := publish(ctx, p.producer, p.routingKey, msg); err != nil {
		logger.Error("Failed to publish phone event", err, nil)
	}
}
