package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/repository"
)

// CartRepository implements port.CartRepository backed by PostgreSQL. Each
// user owns at most one cart row.
type CartRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

func NewCartRepository(exec pgExecutor) *CartRepository {
	return &CartRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *CartRepository) GetByUser(ctx context.Context, userID int64) (*domain.Cart, error) {
	sqlStmt, args, err := r.builder.Select("id", "user_id").
		From("carts").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select cart: %w", err)
	}

	var cart domain.Cart
	if err := r.exec.QueryRow(ctx, sqlStmt, args...).Scan(&cart.ID, &cart.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select cart: %w", err)
	}

	if err := r.loadItems(ctx, &cart); err != nil {
		return nil, err
	}

	return &cart, nil
}

// GetOrCreate returns the user's cart, creating the row on first use. The
// upsert keeps concurrent first calls from racing on the unique user_id.
func (r *CartRepository) GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error) {
	sqlStmt, args, err := r.builder.Insert("carts").
		Columns("user_id").
		Values(userID).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build upsert cart: %w", err)
	}

	cart := domain.Cart{UserID: userID}
	if err := r.exec.QueryRow(ctx, sqlStmt, args...).Scan(&cart.ID); err != nil {
		return nil, fmt.Errorf("upsert cart: %w", err)
	}

	if err := r.loadItems(ctx, &cart); err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *CartRepository) loadItems(ctx context.Context, cart *domain.Cart) error {
	sqlStmt, args, err := r.builder.Select(
		"ci.id",
		"ci.cart_id",
		"ci.movie_id",
		"ci.added_at",
		"m.name",
		"m.price",
	).
		From("cart_items ci").
		Join("movies m ON m.id = ci.movie_id").
		Where(squirrel.Eq{"ci.cart_id": cart.ID}).
		OrderBy("ci.added_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build select cart items: %w", err)
	}

	rows, err := r.exec.Query(ctx, sqlStmt, args...)
	if err != nil {
		return fmt.Errorf("select cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.MovieID,
			&item.AddedAt,
			&item.MovieName,
			&item.MoviePrice,
		); err != nil {
			return fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate cart items: %w", err)
	}

	return nil
}

// AddItem inserts a cart line. Re-adding the same movie yields
// repository.ErrConflict.
func (r *CartRepository) AddItem(ctx context.Context, cartID, movieID int64) (int64, error) {
	sqlStmt, args, err := r.builder.Insert("cart_items").
		Columns("cart_id", "movie_id").
		Values(cartID, movieID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert cart item: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, sqlStmt, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrConflict
		}
		return 0, fmt.Errorf("insert cart item: %w", err)
	}

	return id, nil
}

func (r *CartRepository) RemoveItem(ctx context.Context, cartID, movieID int64) error {
	sqlStmt, args, err := r.builder.Delete("cart_items").
		Where(squirrel.Eq{"cart_id": cartID, "movie_id": movieID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete cart item: %w", err)
	}

	tag, err := r.exec.Exec(ctx, sqlStmt, args...)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *CartRepository) HasItem(ctx context.Context, cartID, movieID int64) (bool, error) {
	sqlStmt, args, err := r.builder.Select("1").
		From("cart_items").
		Where(squirrel.Eq{"cart_id": cartID, "movie_id": movieID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build cart has item: %w", err)
	}

	var one int
	err = r.exec.QueryRow(ctx, sqlStmt, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cart has item: %w", err)
	}

	return true, nil
}

var _ port.CartRepository = (*CartRepository)(nil)
