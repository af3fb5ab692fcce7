package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	stripego "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/infra/config"
)

// Gateway implements port.PaymentGateway against the Stripe API.
type Gateway struct {
	api           *client.API
	webhookSecret string
	logger        *zap.Logger
}

// NewGateway constructs a Stripe gateway. When no secret key is configured
// the gateway reports itself as unconfigured and rejects charge attempts.
func NewGateway(cfg config.StripeSettings, log *zap.Logger) *Gateway {
	g := &Gateway{
		webhookSecret: cfg.WebhookSecret,
		logger:        log,
	}

	if cfg.SecretKey != "" {
		api := &client.API{}
		api.Init(cfg.SecretKey, nil)
		g.api = api
	}

	return g
}

// Configured reports whether an API key is available.
func (g *Gateway) Configured() bool {
	return g.api != nil
}

// CreateIntent requests a PaymentIntent for the amount given in major
// currency units. Stripe expects integer minor units.
func (g *Gateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (*port.PaymentIntent, error) {
	if g.api == nil {
		return nil, port.ErrGatewayNotConfigured
	}

	minorUnits := amount.Shift(2).Round(0).IntPart()

	params := &stripego.PaymentIntentParams{
		Amount:   stripego.Int64(minorUnits),
		Currency: stripego.String(currency),
		AutomaticPaymentMethods: &stripego.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripego.Bool(true),
		},
	}
	params.Context = ctx

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, g.mapError(err)
	}

	return &port.PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (g *Gateway) mapError(err error) error {
	var stripeErr *stripego.Error
	if errors.As(err, &stripeErr) {
		g.logger.Warn("Stripe request failed",
			zap.String("type", string(stripeErr.Type)),
			zap.String("code", string(stripeErr.Code)),
		)

		if stripeErr.Type == stripego.ErrorTypeInvalidRequest {
			return fmt.Errorf("%w: %s", port.ErrInvalidPaymentMethod, stripeErr.Msg)
		}
		return fmt.Errorf("%w: %s", port.ErrGatewayUnavailable, stripeErr.Msg)
	}

	return fmt.Errorf("%w: %v", port.ErrGatewayUnavailable, err)
}

// VerifyWebhook authenticates the raw webhook body against the Stripe
// signature header and decodes the events the service reconciles.
func (g *Gateway) VerifyWebhook(payload []byte, signatureHeader string) (*port.WebhookEvent, error) {
	if g.webhookSecret == "" {
		return nil, port.ErrGatewayNotConfigured
	}

	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrInvalidWebhook, err)
	}

	switch stripego.EventType(event.Type) {
	case stripego.EventTypePaymentIntentSucceeded, stripego.EventTypePaymentIntentPaymentFailed:
		var intent stripego.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("%w: decode payment intent: %v", port.ErrInvalidWebhook, err)
		}
		return &port.WebhookEvent{
			Type:              port.WebhookEventType(event.Type),
			ExternalPaymentID: intent.ID,
		}, nil

	case stripego.EventTypeChargeRefunded:
		var charge stripego.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return nil, fmt.Errorf("%w: decode charge: %v", port.ErrInvalidWebhook, err)
		}
		if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
			return nil, fmt.Errorf("%w: refunded charge has no payment intent", port.ErrInvalidWebhook)
		}
		return &port.WebhookEvent{
			Type:              port.WebhookChargeRefunded,
			ExternalPaymentID: charge.PaymentIntent.ID,
		}, nil

	default:
		g.logger.Debug("Ignoring unhandled webhook event", zap.String("type", string(event.Type)))
		return nil, nil
	}
}

var _ port.PaymentGateway = (*Gateway)(nil)
