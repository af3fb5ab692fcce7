package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/repository"
)

var (
	// ErrOrderNotFound indicates the order does not exist or is not owned
	// by the requesting user.
	ErrOrderNotFound = errors.New("order not found")
	// ErrEmptyCart indicates the user has no cart or the cart holds no items.
	ErrEmptyCart = errors.New("your cart is empty or not found")
	// ErrMovieAlreadyOrdered indicates a cart item already sits in a pending
	// order of the same user.
	ErrMovieAlreadyOrdered = errors.New("movie is already in a pending order")
	// ErrPaidOrderCancel indicates a direct cancel attempt on a paid order.
	ErrPaidOrderCancel = errors.New("paid orders cannot be canceled directly")
	// ErrOrderAlreadyPaid indicates the order has already been paid.
	ErrOrderAlreadyPaid = errors.New("order is already paid")
	// ErrOrderAlreadyCanceled indicates the order has already been canceled.
	ErrOrderAlreadyCanceled = errors.New("order is already canceled")
)

// OrderPage is one page of orders with the total for pagination.
type OrderPage struct {
	Orders     []domain.Order
	TotalItems int
}

// OrderService manages the order lifecycle: pending on creation, then paid
// via checkout or canceled by the user.
type OrderService struct {
	orders port.OrderRepository
	logger *zap.Logger
}

func NewOrderService(orders port.OrderRepository, log *zap.Logger) *OrderService {
	return &OrderService{orders: orders, logger: log}
}

// Create converts the user's cart into a pending order. Any cart item that
// cannot be ordered fails the whole request and leaves the cart untouched.
func (s *OrderService) Create(ctx context.Context, userID int64) (*domain.Order, error) {
	order, err := s.orders.CreateFromCart(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoOrderableItems):
			return nil, ErrEmptyCart
		case errors.Is(err, repository.ErrItemUnavailable):
			return nil, ErrMovieNotFound
		case errors.Is(err, repository.ErrItemPurchased):
			return nil, ErrMovieAlreadyPurchased
		case errors.Is(err, repository.ErrItemPending):
			return nil, ErrMovieAlreadyOrdered
		}
		return nil, err
	}

	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)

	return order, nil
}

// ListForUser returns the user's own orders.
func (s *OrderService) ListForUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// List returns one page of orders matching the admin filter.
func (s *OrderService) List(ctx context.Context, filter port.OrderFilter) (*OrderPage, error) {
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &OrderPage{Orders: orders, TotalItems: total}, nil
}

// Get returns one order. Non-staff callers only see their own orders.
func (s *OrderService) Get(ctx context.Context, userID, orderID int64, staff bool) (*domain.Order, error) {
	var (
		order *domain.Order
		err   error
	)
	if staff {
		order, err = s.orders.GetByID(ctx, orderID)
	} else {
		order, err = s.orders.GetOwned(ctx, userID, orderID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

// Pay moves a pending order to paid without going through checkout. Used
// for orders settled outside the payment provider.
func (s *OrderService) Pay(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	order, err := s.orders.GetOwned(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	switch order.Status {
	case domain.OrderPaid:
		return nil, ErrOrderAlreadyPaid
	case domain.OrderCanceled:
		return nil, ErrOrderAlreadyCanceled
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, domain.OrderPaid); err != nil {
		return nil, err
	}
	order.Status = domain.OrderPaid

	s.logger.Info("Order paid",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
	)

	return order, nil
}

// Cancel moves a pending order to canceled. Paid orders cannot be canceled
// directly; they require a refund through the payment provider.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	order, err := s.orders.GetOwned(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	switch order.Status {
	case domain.OrderPaid:
		return nil, ErrPaidOrderCancel
	case domain.OrderCanceled:
		return nil, ErrOrderAlreadyCanceled
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, domain.OrderCanceled); err != nil {
		return nil, err
	}
	order.Status = domain.OrderCanceled

	s.logger.Info("Order canceled",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
	)

	return order, nil
}
