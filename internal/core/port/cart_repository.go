package port

import (
	"context"

	"github.com/msubchak/online-cinema/internal/core/domain"
)

// CartRepository persists per-user carts and their items.
type CartRepository interface {
	GetByUser(ctx context.Context, userID int64) (*domain.Cart, error)
	// GetOrCreate returns the user's cart, creating the row on first use.
	GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID, movieID int64) (int64, error)
	RemoveItem(ctx context.Context, cartID, movieID int64) error
	HasItem(ctx context.Context, cartID, movieID int64) (bool, error)
}
