package port

import (
	"context"

	"github.com/msubchak/online-cinema/internal/core/domain"
)

// EventPublisher fans out domain events to downstream consumers.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishUserActivated(ctx context.Context, event domain.UserActivatedEvent) error
	PublishOrderPaid(ctx context.Context, event domain.OrderPaidEvent) error
	PublishPaymentStatusChanged(ctx context.Context, event domain.PaymentStatusChangedEvent) error
}
