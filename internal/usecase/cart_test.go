package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/repository"
)

func newCartFixture() (*CartService, *mockCartRepository, *mockMovieRepository, *mockOrderRepository) {
	carts := &mockCartRepository{cart: &domain.Cart{ID: 1, UserID: 3}}
	movies := newMockMovieRepository()
	orders := newMockOrderRepository()
	return NewCartService(carts, movies, orders, zap.NewNop()), carts, movies, orders
}

func TestCartService_Get(t *testing.T) {
	service, _, _, _ := newCartFixture()

	cart, err := service.Get(context.Background(), 3)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if cart.UserID != 3 {
		t.Fatalf("unexpected cart owner %d", cart.UserID)
	}
}

func TestCartService_GetNoCartYet(t *testing.T) {
	service, carts, _, _ := newCartFixture()
	carts.getByUserErr = repository.ErrNotFound

	if _, err := service.Get(context.Background(), 3); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestCartService_AddMovie(t *testing.T) {
	service, carts, movies, _ := newCartFixture()
	movies.add(domain.Movie{ID: 10, Name: "Inception"})

	if _, err := service.AddMovie(context.Background(), 3, 10); err != nil {
		t.Fatalf("AddMovie returned error: %v", err)
	}
	if carts.addItemCalls != 1 || carts.addedMovieID != 10 {
		t.Fatalf("expected one AddItem for movie 10")
	}
}

func TestCartService_AddMovieUnknownMovie(t *testing.T) {
	service, carts, _, _ := newCartFixture()

	if _, err := service.AddMovie(context.Background(), 3, 404); !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound, got %v", err)
	}
	if carts.addItemCalls != 0 {
		t.Fatalf("nothing should reach the cart for a missing movie")
	}
}

func TestCartService_AddMovieAlreadyInCart(t *testing.T) {
	service, carts, movies, _ := newCartFixture()
	movies.add(domain.Movie{ID: 10})
	carts.addItemErr = repository.ErrConflict

	if _, err := service.AddMovie(context.Background(), 3, 10); !errors.Is(err, ErrMovieAlreadyInCart) {
		t.Fatalf("expected ErrMovieAlreadyInCart, got %v", err)
	}
}

func TestCartService_AddMovieAlreadyPurchased(t *testing.T) {
	service, carts, movies, orders := newCartFixture()
	movies.add(domain.Movie{ID: 10})
	orders.hasPaidResult = true

	if _, err := service.AddMovie(context.Background(), 3, 10); !errors.Is(err, ErrMovieAlreadyPurchased) {
		t.Fatalf("expected ErrMovieAlreadyPurchased, got %v", err)
	}
	if carts.addItemCalls != 0 {
		t.Fatalf("purchased movie must not be re-added")
	}
}

func TestCartService_RemoveMovieMissing(t *testing.T) {
	service, carts, _, _ := newCartFixture()
	carts.removeItemErr = repository.ErrNotFound

	if _, err := service.RemoveMovie(context.Background(), 3, 10); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}
}
