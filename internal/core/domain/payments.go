package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus reflects the real-world charge outcome reported by the
// payment gateway.
type PaymentStatus string

const (
	PaymentSuccessful PaymentStatus = "successful"
	PaymentCanceled   PaymentStatus = "canceled"
	PaymentRefunded   PaymentStatus = "refunded"
)

// Payment records one attempted charge for an order. ExternalPaymentID is
// the gateway's intent identifier and correlates asynchronous webhook events
// with this row.
type Payment struct {
	ID                int64
	UserID            int64
	OrderID           int64
	Status            PaymentStatus
	Amount            decimal.Decimal
	ExternalPaymentID string
	CreatedAt         time.Time
	Items             []PaymentItem
}

// PaymentItem snapshots the order item's price at payment time.
type PaymentItem struct {
	ID             int64
	PaymentID      int64
	OrderItemID    int64
	PriceAtPayment decimal.Decimal
}
