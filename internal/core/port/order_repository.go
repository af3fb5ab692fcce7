package port

import (
	"context"
	"time"

	"github.com/msubchak/online-cinema/internal/core/domain"
)

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	UserID      *int64
	Status      *domain.OrderStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// OrderRepository persists orders and their price-snapshot items.
//
// CreateFromCart moves the user's cart into a new pending order inside one
// serialized transaction: it locks the cart row, re-validates that no item
// already belongs to a paid or pending order of the same user, snapshots
// prices, and drains the cart items. Concurrent calls for the same user
// cannot both succeed.
type OrderRepository interface {
	CreateFromCart(ctx context.Context, userID int64) (*domain.Order, error)
	GetByID(ctx context.Context, orderID int64) (*domain.Order, error)
	GetOwned(ctx context.Context, userID, orderID int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	Count(ctx context.Context, filter OrderFilter) (int, error)
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error
	// HasPaidItem reports whether the movie appears in any paid order of the user.
	HasPaidItem(ctx context.Context, userID, movieID int64) (bool, error)
}
