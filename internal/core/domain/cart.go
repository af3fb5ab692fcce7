package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the per-user staging area of movies pending purchase. At most one
// cart row exists per user.
type Cart struct {
	ID     int64
	UserID int64
	Items  []CartItem
}

// CartItem references a movie held in a cart. A movie appears at most once
// per cart.
type CartItem struct {
	ID      int64
	CartID  int64
	MovieID int64
	AddedAt time.Time

	MovieName  string
	MoviePrice decimal.Decimal
}
