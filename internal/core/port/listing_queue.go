package port

import (
	"context"

	"immo-parser-service/internal/core/domain"
)

// ListingQueuePort - ограниченная очередь между обходом и sink.
// Submit блокируется, пока в очереди нет места.
type ListingQueuePort interface {
	Submit(ctx context.Context, event domain.ListingEvent) error
}
