package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/core/port"
)

type paymentFixture struct {
	service  *PaymentService
	payments *mockPaymentRepository
	orders   *mockOrderRepository
	users    *mockUserRepository
	gateway  *mockPaymentGateway
	emails   *mockEmailSender
	events   *mockEventPublisher
}

func newPaymentFixture() *paymentFixture {
	payments := newMockPaymentRepository()
	orders := newMockOrderRepository()
	users := newMockUserRepository()
	gateway := &mockPaymentGateway{
		configured:   true,
		intentResult: &port.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"},
	}
	emails := &mockEmailSender{}
	events := &mockEventPublisher{}

	service := NewPaymentService(payments, orders, users, gateway, emails, events, "usd", zap.NewNop())

	return &paymentFixture{
		service:  service,
		payments: payments,
		orders:   orders,
		users:    users,
		gateway:  gateway,
		emails:   emails,
		events:   events,
	}
}

func (f *paymentFixture) addPendingOrder() {
	f.orders.add(domain.Order{
		ID:          1,
		UserID:      3,
		Status:      domain.OrderPending,
		TotalAmount: decimal.RequireFromString("19.98"),
		Items: []domain.OrderItem{
			{ID: 1, MovieID: 10, PriceAtOrder: decimal.RequireFromString("9.99")},
			{ID: 2, MovieID: 11, PriceAtOrder: decimal.RequireFromString("9.99")},
		},
	})
	f.users.add(domain.User{ID: 3, Email: "user@example.com", IsActive: true})
}

func TestPaymentService_Checkout(t *testing.T) {
	f := newPaymentFixture()
	f.addPendingOrder()

	result, err := f.service.Checkout(context.Background(), 3, 1)
	if err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}

	if result.ClientSecret != "pi_123_secret" {
		t.Fatalf("unexpected client secret: %s", result.ClientSecret)
	}
	if result.Payment.ExternalPaymentID != "pi_123" {
		t.Fatalf("payment not correlated with the intent: %s", result.Payment.ExternalPaymentID)
	}
	if !f.gateway.intentAmount.Equal(decimal.RequireFromString("19.98")) {
		t.Fatalf("charged wrong amount: %s", f.gateway.intentAmount)
	}
	if len(f.payments.created.Items) != 2 {
		t.Fatalf("expected price snapshots for both items, got %d", len(f.payments.created.Items))
	}
	if f.orders.updateStatusStatus != domain.OrderPaid {
		t.Fatalf("order must move to paid, got %s", f.orders.updateStatusStatus)
	}
	if f.emails.paymentCalls != 1 || f.emails.paymentOrderID != 1 {
		t.Fatalf("expected payment success email for order 1")
	}
	if f.events.orderPaidCalls != 1 {
		t.Fatalf("expected order paid event")
	}
}

func TestPaymentService_CheckoutAlreadyPaid(t *testing.T) {
	f := newPaymentFixture()
	f.orders.add(domain.Order{ID: 1, UserID: 3, Status: domain.OrderPaid})

	if _, err := f.service.Checkout(context.Background(), 3, 1); !errors.Is(err, ErrOrderAlreadyPaid) {
		t.Fatalf("expected ErrOrderAlreadyPaid, got %v", err)
	}
	if f.gateway.intentCalls != 0 {
		t.Fatalf("no charge should be attempted")
	}
}

func TestPaymentService_CheckoutCanceledOrder(t *testing.T) {
	f := newPaymentFixture()
	f.orders.add(domain.Order{ID: 1, UserID: 3, Status: domain.OrderCanceled})

	if _, err := f.service.Checkout(context.Background(), 3, 1); !errors.Is(err, ErrOrderAlreadyCanceled) {
		t.Fatalf("expected ErrOrderAlreadyCanceled, got %v", err)
	}
}

func TestPaymentService_CheckoutGatewayNotConfigured(t *testing.T) {
	f := newPaymentFixture()
	f.addPendingOrder()
	f.gateway.configured = false

	if _, err := f.service.Checkout(context.Background(), 3, 1); !errors.Is(err, port.ErrGatewayNotConfigured) {
		t.Fatalf("expected ErrGatewayNotConfigured, got %v", err)
	}
}

func TestPaymentService_CheckoutGatewayErrorsPassThrough(t *testing.T) {
	f := newPaymentFixture()
	f.addPendingOrder()
	f.gateway.intentErr = port.ErrInvalidPaymentMethod

	if _, err := f.service.Checkout(context.Background(), 3, 1); !errors.Is(err, port.ErrInvalidPaymentMethod) {
		t.Fatalf("expected ErrInvalidPaymentMethod, got %v", err)
	}
	if f.payments.createCalls != 0 {
		t.Fatalf("no payment row for a failed charge")
	}
	if f.orders.updateStatusCalls != 0 {
		t.Fatalf("order must stay pending on gateway failure")
	}
}

func TestPaymentService_CheckoutForeignOrder(t *testing.T) {
	f := newPaymentFixture()
	f.orders.add(domain.Order{ID: 1, UserID: 99, Status: domain.OrderPending})

	if _, err := f.service.Checkout(context.Background(), 3, 1); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestPaymentService_WebhookRefund(t *testing.T) {
	f := newPaymentFixture()
	f.payments.add(domain.Payment{
		ID:                1,
		UserID:            3,
		OrderID:           1,
		Status:            domain.PaymentSuccessful,
		Amount:            decimal.RequireFromString("19.98"),
		ExternalPaymentID: "pi_123",
	})

	err := f.service.HandleWebhook(context.Background(), &port.WebhookEvent{
		Type:              port.WebhookChargeRefunded,
		ExternalPaymentID: "pi_123",
	})
	if err != nil {
		t.Fatalf("HandleWebhook returned error: %v", err)
	}

	if f.payments.updateStatusStatus != domain.PaymentRefunded {
		t.Fatalf("expected refunded, got %s", f.payments.updateStatusStatus)
	}
	if f.orders.updateStatusStatus != domain.OrderCanceled {
		t.Fatalf("refund must cancel the order, got %s", f.orders.updateStatusStatus)
	}
	if f.events.statusChangedCalls != 1 {
		t.Fatalf("expected status changed event")
	}
}

func TestPaymentService_WebhookReplayIsIdempotent(t *testing.T) {
	f := newPaymentFixture()
	f.payments.add(domain.Payment{
		ID:                1,
		OrderID:           1,
		Status:            domain.PaymentSuccessful,
		ExternalPaymentID: "pi_123",
	})

	err := f.service.HandleWebhook(context.Background(), &port.WebhookEvent{
		Type:              port.WebhookPaymentSucceeded,
		ExternalPaymentID: "pi_123",
	})
	if err != nil {
		t.Fatalf("HandleWebhook returned error: %v", err)
	}

	if f.payments.updateStatusCalls != 0 {
		t.Fatalf("replayed event must not rewrite the payment")
	}
	if f.orders.updateStatusCalls != 0 {
		t.Fatalf("replayed event must not rewrite the order")
	}
	if f.events.statusChangedCalls != 0 {
		t.Fatalf("replayed event must not publish")
	}
}

func TestPaymentService_WebhookUnknownPayment(t *testing.T) {
	f := newPaymentFixture()

	err := f.service.HandleWebhook(context.Background(), &port.WebhookEvent{
		Type:              port.WebhookPaymentSucceeded,
		ExternalPaymentID: "pi_unknown",
	})
	if err != nil {
		t.Fatalf("unknown payment must be acknowledged, got %v", err)
	}
}

func TestPaymentService_WebhookNilEvent(t *testing.T) {
	f := newPaymentFixture()

	if err := f.service.HandleWebhook(context.Background(), nil); err != nil {
		t.Fatalf("nil event must be a no-op, got %v", err)
	}
}
