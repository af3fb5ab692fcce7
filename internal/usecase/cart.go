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
	// ErrMovieAlreadyInCart indicates the movie is already in the cart.
	ErrMovieAlreadyInCart = errors.New("movie is already in the cart")
	// ErrMovieAlreadyPurchased indicates the user already owns the movie.
	ErrMovieAlreadyPurchased = errors.New("you have already purchased this movie")
	// ErrCartItemNotFound indicates the movie is not in the cart.
	ErrCartItemNotFound = errors.New("movie is not in the cart")
	// ErrCartNotFound indicates the user has no cart yet.
	ErrCartNotFound = errors.New("cart not found")
)

// CartService manages per-user shopping carts.
type CartService struct {
	carts  port.CartRepository
	movies port.MovieRepository
	orders port.OrderRepository
	logger *zap.Logger
}

func NewCartService(carts port.CartRepository, movies port.MovieRepository, orders port.OrderRepository, log *zap.Logger) *CartService {
	return &CartService{carts: carts, movies: movies, orders: orders, logger: log}
}

// Get returns the user's cart. A cart row only appears once the user adds
// a first item.
func (s *CartService) Get(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return cart, nil
}

// AddMovie puts a movie into the user's cart. Movies the user already paid
// for cannot be re-added.
func (s *CartService) AddMovie(ctx context.Context, userID, movieID int64) (*domain.Cart, error) {
	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}

	purchased, err := s.orders.HasPaidItem(ctx, userID, movieID)
	if err != nil {
		return nil, err
	}
	if purchased {
		return nil, ErrMovieAlreadyPurchased
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.carts.AddItem(ctx, cart.ID, movieID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrMovieAlreadyInCart
		}
		return nil, err
	}

	s.logger.Info("Movie added to cart",
		zap.Int64("user_id", userID),
		zap.Int64("movie_id", movieID),
	)

	return s.carts.GetByUser(ctx, userID)
}

// RemoveMovie takes a movie out of the user's cart.
func (s *CartService) RemoveMovie(ctx context.Context, userID, movieID int64) (*domain.Cart, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	if err := s.carts.RemoveItem(ctx, cart.ID, movieID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	return s.carts.GetByUser(ctx, userID)
}
