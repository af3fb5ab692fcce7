package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a uniqueness constraint rejected the write.
	ErrConflict = errors.New("repository: conflict")
	// ErrNoOrderableItems indicates the user has no cart or the cart holds
	// no items.
	ErrNoOrderableItems = errors.New("repository: no orderable items")
	// ErrItemUnavailable indicates a cart item references a movie that no
	// longer exists in the catalog.
	ErrItemUnavailable = errors.New("repository: cart item movie missing")
	// ErrItemPurchased indicates a cart item was already bought in a paid
	// order of the same user.
	ErrItemPurchased = errors.New("repository: cart item already purchased")
	// ErrItemPending indicates a cart item already sits in a pending order
	// of the same user.
	ErrItemPending = errors.New("repository: cart item already pending")
)
