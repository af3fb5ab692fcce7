package port

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrGatewayNotConfigured indicates no API key is set for the gateway.
	ErrGatewayNotConfigured = errors.New("gateway: not configured")
	// ErrInvalidPaymentMethod indicates the gateway rejected the payment method.
	ErrInvalidPaymentMethod = errors.New("gateway: invalid payment method")
	// ErrGatewayUnavailable indicates a processing failure on the gateway side.
	ErrGatewayUnavailable = errors.New("gateway: processing error")
	// ErrInvalidWebhook indicates a malformed webhook payload or bad signature.
	ErrInvalidWebhook = errors.New("gateway: invalid webhook event")
)

// WebhookEventType enumerates the gateway callbacks the service reconciles.
type WebhookEventType string

const (
	WebhookPaymentSucceeded WebhookEventType = "payment_intent.succeeded"
	WebhookPaymentFailed    WebhookEventType = "payment_intent.payment_failed"
	WebhookChargeRefunded   WebhookEventType = "charge.refunded"
)

// WebhookEvent is a verified, decoded gateway callback.
type WebhookEvent struct {
	Type              WebhookEventType
	ExternalPaymentID string
}

// PaymentIntent is the gateway's handle for one attempted charge.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// PaymentGateway abstracts the external payment processor so handlers and
// usecases can be tested without network access.
type PaymentGateway interface {
	// CreateIntent requests a charge for the amount, given in major currency
	// units; implementations convert to integer minor units.
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (*PaymentIntent, error)
	// VerifyWebhook authenticates a raw webhook body against its signature
	// header and decodes the event.
	VerifyWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
	// Configured reports whether an API key is available.
	Configured() bool
}
