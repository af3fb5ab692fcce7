package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the order state machine: pending may transition to paid or
// canceled, both of which are terminal.
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderPaid     OrderStatus = "paid"
	OrderCanceled OrderStatus = "canceled"
)

// Order is an immutable purchase created from a cart. TotalAmount equals the
// sum of its items' price snapshots.
type Order struct {
	ID          int64
	UserID      int64
	Status      OrderStatus
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	Items       []OrderItem
}

// OrderItem snapshots a movie's price at order-creation time, decoupling the
// order from later catalog price changes.
type OrderItem struct {
	ID           int64
	OrderID      int64
	MovieID      int64
	PriceAtOrder decimal.Decimal

	MovieName string
}
