package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/repository"
)

// CheckoutResult carries the stored payment together with the gateway's
// client secret for the frontend to confirm the charge.
type CheckoutResult struct {
	Payment      *domain.Payment
	ClientSecret string
}

// PaymentPage is one page of payments with the total for pagination.
type PaymentPage struct {
	Payments   []domain.Payment
	TotalItems int
}

// PaymentService charges pending orders through the payment gateway and
// reconciles asynchronous gateway webhooks against stored payments.
type PaymentService struct {
	payments port.PaymentRepository
	orders   port.OrderRepository
	users    port.UserRepository
	gateway  port.PaymentGateway
	emails   port.EmailSender
	events   port.EventPublisher
	currency string
	logger   *zap.Logger
}

func NewPaymentService(
	payments port.PaymentRepository,
	orders port.OrderRepository,
	users port.UserRepository,
	gateway port.PaymentGateway,
	emails port.EmailSender,
	events port.EventPublisher,
	currency string,
	log *zap.Logger,
) *PaymentService {
	if currency == "" {
		currency = "usd"
	}
	return &PaymentService{
		payments: payments,
		orders:   orders,
		users:    users,
		gateway:  gateway,
		emails:   emails,
		events:   events,
		currency: currency,
		logger:   log,
	}
}

// Checkout charges a pending order. On success the order becomes paid and a
// payment row records the gateway intent for webhook correlation. Gateway
// failures surface as the port sentinel errors for the transport layer to map.
func (s *PaymentService) Checkout(ctx context.Context, userID, orderID int64) (*CheckoutResult, error) {
	order, err := s.orders.GetOwned(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	switch order.Status {
	case domain.OrderPaid:
		return nil, ErrOrderAlreadyPaid
	case domain.OrderCanceled:
		return nil, ErrOrderAlreadyCanceled
	}

	if !s.gateway.Configured() {
		return nil, port.ErrGatewayNotConfigured
	}

	intent, err := s.gateway.CreateIntent(ctx, order.TotalAmount, s.currency)
	if err != nil {
		return nil, err
	}

	payment := domain.Payment{
		UserID:            userID,
		OrderID:           order.ID,
		Status:            domain.PaymentSuccessful,
		Amount:            order.TotalAmount,
		ExternalPaymentID: intent.ID,
	}
	for _, item := range order.Items {
		payment.Items = append(payment.Items, domain.PaymentItem{
			OrderItemID:    item.ID,
			PriceAtPayment: item.PriceAtOrder,
		})
	}

	created, err := s.payments.Create(ctx, payment)
	if err != nil {
		return nil, err
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, domain.OrderPaid); err != nil {
		return nil, err
	}

	s.logger.Info("Order paid",
		zap.Int64("order_id", order.ID),
		zap.Int64("payment_id", created.ID),
		zap.String("external_payment_id", created.ExternalPaymentID),
	)

	if user, err := s.users.GetByID(ctx, userID); err == nil {
		if err := s.emails.SendPaymentSuccessEmail(ctx, user.Email, order.ID); err != nil {
			s.logger.Warn("Payment success email failed", zap.Error(err))
		}
	}

	if err := s.events.PublishOrderPaid(ctx, domain.OrderPaidEvent{
		OrderID:     order.ID,
		UserID:      userID,
		TotalAmount: order.TotalAmount,
		PaidAt:      time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("Publish order paid failed", zap.Error(err))
	}

	return &CheckoutResult{Payment: created, ClientSecret: intent.ClientSecret}, nil
}

// ListForUser returns the user's own payments.
func (s *PaymentService) ListForUser(ctx context.Context, userID int64) ([]domain.Payment, error) {
	return s.payments.List(ctx, port.PaymentFilter{UserID: &userID})
}

// List returns one page of payments matching the admin filter.
func (s *PaymentService) List(ctx context.Context, filter port.PaymentFilter) (*PaymentPage, error) {
	total, err := s.payments.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	payments, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &PaymentPage{Payments: payments, TotalItems: total}, nil
}

// HandleWebhook reconciles a verified gateway event against the stored
// payment. Replayed events find the payment already in the target status
// and change nothing.
func (s *PaymentService) HandleWebhook(ctx context.Context, event *port.WebhookEvent) error {
	if event == nil {
		return nil
	}

	payment, err := s.payments.GetByExternalID(ctx, event.ExternalPaymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Webhook for unknown payment",
				zap.String("external_payment_id", event.ExternalPaymentID),
				zap.String("type", string(event.Type)),
			)
			return nil
		}
		return err
	}

	var target domain.PaymentStatus
	var orderStatus domain.OrderStatus
	switch event.Type {
	case port.WebhookPaymentSucceeded:
		target, orderStatus = domain.PaymentSuccessful, domain.OrderPaid
	case port.WebhookPaymentFailed:
		target, orderStatus = domain.PaymentCanceled, domain.OrderPending
	case port.WebhookChargeRefunded:
		target, orderStatus = domain.PaymentRefunded, domain.OrderCanceled
	default:
		return nil
	}

	if payment.Status == target {
		return nil
	}

	if err := s.payments.UpdateStatus(ctx, payment.ID, target); err != nil {
		return err
	}
	if err := s.orders.UpdateStatus(ctx, payment.OrderID, orderStatus); err != nil {
		return err
	}

	s.logger.Info("Payment status reconciled",
		zap.Int64("payment_id", payment.ID),
		zap.String("from", string(payment.Status)),
		zap.String("to", string(target)),
	)

	if target == domain.PaymentSuccessful {
		if user, err := s.users.GetByID(ctx, payment.UserID); err == nil {
			if err := s.emails.SendPaymentSuccessEmail(ctx, user.Email, payment.OrderID); err != nil {
				s.logger.Warn("Payment success email failed", zap.Error(err))
			}
		}
	}

	if err := s.events.PublishPaymentStatusChanged(ctx, domain.PaymentStatusChangedEvent{
		PaymentID:         payment.ID,
		OrderID:           payment.OrderID,
		UserID:            payment.UserID,
		ExternalPaymentID: payment.ExternalPaymentID,
		Status:            target,
		Amount:            payment.Amount,
		ChangedAt:         time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("Publish payment status changed failed", zap.Error(err))
	}

	return nil
}
