package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/infra/config"
	"github.com/msubchak/online-cinema/internal/infra/logger"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, log *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: log}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    int64            `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType string, userID int64, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if requestID, ok := ctx.Value(logger.RequestIDKey{}).(string); ok && requestID != "" {
		metadata["request_id"] = requestID
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes cinema.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       int64     `json:"user_id"`
		Email        string    `json:"email"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		UserID:       event.UserID,
		Email:        event.Email,
		RegisteredAt: event.RegisteredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "user.registered", event.UserID, event.RegisteredAt, payload)
}

// PublishUserActivated publishes cinema.user.activated events.
func (p *EventPublisher) PublishUserActivated(ctx context.Context, event domain.UserActivatedEvent) error {
	payload := struct {
		UserID      int64     `json:"user_id"`
		Email       string    `json:"email"`
		ActivatedAt time.Time `json:"activated_at"`
	}{
		UserID:      event.UserID,
		Email:       event.Email,
		ActivatedAt: event.ActivatedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "user.activated", event.UserID, event.ActivatedAt, payload)
}

// PublishOrderPaid publishes cinema.order.paid events.
func (p *EventPublisher) PublishOrderPaid(ctx context.Context, event domain.OrderPaidEvent) error {
	payload := struct {
		OrderID     int64     `json:"order_id"`
		UserID      int64     `json:"user_id"`
		TotalAmount string    `json:"total_amount"`
		PaidAt      time.Time `json:"paid_at"`
	}{
		OrderID:     event.OrderID,
		UserID:      event.UserID,
		TotalAmount: event.TotalAmount.StringFixed(2),
		PaidAt:      event.PaidAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "order.paid", event.UserID, event.PaidAt, payload)
}

// PublishPaymentStatusChanged publishes cinema.payment.status_changed events.
func (p *EventPublisher) PublishPaymentStatusChanged(ctx context.Context, event domain.PaymentStatusChangedEvent) error {
	payload := struct {
		PaymentID         int64     `json:"payment_id"`
		OrderID           int64     `json:"order_id"`
		UserID            int64     `json:"user_id"`
		ExternalPaymentID string    `json:"external_payment_id"`
		Status            string    `json:"status"`
		Amount            string    `json:"amount"`
		ChangedAt         time.Time `json:"changed_at"`
	}{
		PaymentID:         event.PaymentID,
		OrderID:           event.OrderID,
		UserID:            event.UserID,
		ExternalPaymentID: event.ExternalPaymentID,
		Status:            string(event.Status),
		Amount:            event.Amount.StringFixed(2),
		ChangedAt:         event.ChangedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "payment.status_changed", event.UserID, event.ChangedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
