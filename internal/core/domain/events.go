package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserRegisteredEvent represents the payload for cinema.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       int64
	Email        string
	RegisteredAt time.Time
}

// UserActivatedEvent represents the payload for cinema.user.activated messages.
type UserActivatedEvent struct {
	EventID     string
	UserID      int64
	Email       string
	ActivatedAt time.Time
}

// OrderPaidEvent represents the payload for cinema.order.paid messages.
type OrderPaidEvent struct {
	EventID     string
	OrderID     int64
	UserID      int64
	TotalAmount decimal.Decimal
	PaidAt      time.Time
}

// PaymentStatusChangedEvent represents the payload for
// cinema.payment.status_changed messages.
type PaymentStatusChangedEvent struct {
	EventID           string
	PaymentID         int64
	OrderID           int64
	UserID            int64
	ExternalPaymentID string
	Status            PaymentStatus
	Amount            decimal.Decimal
	ChangedAt         time.Time
}
