package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured, typically in development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, userID int64, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.Int64("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs cinema.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"email":         event.Email,
		"registered_at": event.RegisteredAt,
	}
	p.logEvent("user.registered", event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishUserActivated logs cinema.user.activated events.
func (p *StubPublisher) PublishUserActivated(_ context.Context, event domain.UserActivatedEvent) error {
	payload := map[string]any{
		"user_id":      event.UserID,
		"email":        event.Email,
		"activated_at": event.ActivatedAt,
	}
	p.logEvent("user.activated", event.UserID, event.ActivatedAt, payload)
	return nil
}

// PublishOrderPaid logs cinema.order.paid events.
func (p *StubPublisher) PublishOrderPaid(_ context.Context, event domain.OrderPaidEvent) error {
	payload := map[string]any{
		"order_id":     event.OrderID,
		"user_id":      event.UserID,
		"total_amount": event.TotalAmount.StringFixed(2),
		"paid_at":      event.PaidAt,
	}
	p.logEvent("order.paid", event.UserID, event.PaidAt, payload)
	return nil
}

// PublishPaymentStatusChanged logs cinema.payment.status_changed events.
func (p *StubPublisher) PublishPaymentStatusChanged(_ context.Context, event domain.PaymentStatusChangedEvent) error {
	payload := map[string]any{
		"payment_id":          event.PaymentID,
		"order_id":            event.OrderID,
		"user_id":             event.UserID,
		"external_payment_id": event.ExternalPaymentID,
		"status":              string(event.Status),
		"amount":              event.Amount.StringFixed(2),
		"changed_at":          event.ChangedAt,
	}
	p.logEvent("payment.status_changed", event.UserID, event.ChangedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
