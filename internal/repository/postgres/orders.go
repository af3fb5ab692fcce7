package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/repository"
)

// OrderRepository implements port.OrderRepository backed by PostgreSQL.
type OrderRepository struct {
	db      pgBeginner
	builder squirrel.StatementBuilderType
}

func NewOrderRepository(db pgBeginner) *OrderRepository {
	return &OrderRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateFromCart converts the user's cart into a pending order in one
// transaction. The cart row is locked FOR UPDATE so two concurrent calls
// for the same user serialize; the second sees the drained cart and fails
// with ErrNoOrderableItems. An item whose movie vanished from the catalog
// fails the whole request with ErrItemUnavailable, and an item already
// sitting in a pending or paid order of the user fails it with
// ErrItemPending or ErrItemPurchased; the cart is left untouched in every
// failure case. Prices are snapshotted from the catalog at order time and
// the ordered items are removed from the cart.
func (r *OrderRepository) CreateFromCart(ctx context.Context, userID int64) (*domain.Order, error) {
	var order *domain.Order

	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		var cartID int64
		err := tx.QueryRow(ctx,
			"SELECT id FROM carts WHERE user_id = $1 FOR UPDATE",
			userID,
		).Scan(&cartID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrNoOrderableItems
			}
			return fmt.Errorf("lock cart: %w", err)
		}

		var goneMovieID int64
		err = tx.QueryRow(ctx, `
			SELECT ci.movie_id
			FROM cart_items ci
			LEFT JOIN movies m ON m.id = ci.movie_id
			WHERE ci.cart_id = $1 AND m.id IS NULL
			LIMIT 1`,
			cartID,
		).Scan(&goneMovieID)
		if err == nil {
			return fmt.Errorf("movie %d: %w", goneMovieID, repository.ErrItemUnavailable)
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("check cart items against catalog: %w", err)
		}

		rows, err := tx.Query(ctx, `
			SELECT ci.movie_id, m.name, m.price,
			  EXISTS (
				SELECT 1
				FROM order_items oi
				JOIN orders o ON o.id = oi.order_id
				WHERE o.user_id = $2
				  AND o.status = 'paid'
				  AND oi.movie_id = ci.movie_id
			  ) AS purchased,
			  EXISTS (
				SELECT 1
				FROM order_items oi
				JOIN orders o ON o.id = oi.order_id
				WHERE o.user_id = $2
				  AND o.status = 'pending'
				  AND oi.movie_id = ci.movie_id
			  ) AS pending
			FROM cart_items ci
			JOIN movies m ON m.id = ci.movie_id
			WHERE ci.cart_id = $1
			ORDER BY ci.added_at`,
			cartID, userID,
		)
		if err != nil {
			return fmt.Errorf("select cart items: %w", err)
		}

		type orderable struct {
			movieID int64
			name    string
			price   decimal.Decimal
		}
		var items []orderable
		for rows.Next() {
			var (
				item      orderable
				purchased bool
				pending   bool
			)
			if err := rows.Scan(&item.movieID, &item.name, &item.price, &purchased, &pending); err != nil {
				rows.Close()
				return fmt.Errorf("scan cart item: %w", err)
			}
			if purchased {
				rows.Close()
				return fmt.Errorf("movie %q: %w", item.name, repository.ErrItemPurchased)
			}
			if pending {
				rows.Close()
				return fmt.Errorf("movie %q: %w", item.name, repository.ErrItemPending)
			}
			items = append(items, item)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate cart items: %w", err)
		}

		if len(items) == 0 {
			return repository.ErrNoOrderableItems
		}

		total := decimal.Zero
		for _, item := range items {
			total = total.Add(item.price)
		}

		created := &domain.Order{
			UserID:      userID,
			Status:      domain.OrderPending,
			TotalAmount: total,
		}
		err = tx.QueryRow(ctx,
			"INSERT INTO orders (user_id, status, total_amount) VALUES ($1, $2, $3) RETURNING id, created_at",
			userID, string(domain.OrderPending), total,
		).Scan(&created.ID, &created.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, item := range items {
			var orderItem domain.OrderItem
			err := tx.QueryRow(ctx,
				"INSERT INTO order_items (order_id, movie_id, price_at_order) VALUES ($1, $2, $3) RETURNING id",
				created.ID, item.movieID, item.price,
			).Scan(&orderItem.ID)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}

			orderItem.OrderID = created.ID
			orderItem.MovieID = item.movieID
			orderItem.PriceAtOrder = item.price
			orderItem.MovieName = item.name
			created.Items = append(created.Items, orderItem)

			if _, err := tx.Exec(ctx,
				"DELETE FROM cart_items WHERE cart_id = $1 AND movie_id = $2",
				cartID, item.movieID,
			); err != nil {
				return fmt.Errorf("drain cart item: %w", err)
			}
		}

		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	return r.getBy(ctx, squirrel.Eq{"id": orderID})
}

func (r *OrderRepository) GetOwned(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	return r.getBy(ctx, squirrel.Eq{"id": orderID, "user_id": userID})
}

func (r *OrderRepository) getBy(ctx context.Context, cond squirrel.Eq) (*domain.Order, error) {
	sqlStmt, args, err := r.builder.Select("id", "user_id", "status", "total_amount", "created_at").
		From("orders").
		Where(cond).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select order: %w", err)
	}

	var order domain.Order
	err = r.db.QueryRow(ctx, sqlStmt, args...).Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.TotalAmount,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	orders := []domain.Order{order}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	uid := userID
	return r.List(ctx, port.OrderFilter{UserID: &uid})
}

func (r *OrderRepository) filterConditions(filter port.OrderFilter) []squirrel.Sqlizer {
	var conds []squirrel.Sqlizer

	if filter.UserID != nil {
		conds = append(conds, squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.Status != nil {
		conds = append(conds, squirrel.Eq{"status": string(*filter.Status)})
	}
	if filter.CreatedFrom != nil {
		conds = append(conds, squirrel.GtOrEq{"created_at": filter.CreatedFrom.UTC()})
	}
	if filter.CreatedTo != nil {
		conds = append(conds, squirrel.LtOrEq{"created_at": filter.CreatedTo.UTC()})
	}

	return conds
}

func (r *OrderRepository) List(ctx context.Context, filter port.OrderFilter) ([]domain.Order, error) {
	builder := r.builder.Select("id", "user_id", "status", "total_amount", "created_at").
		From("orders").
		OrderBy("created_at DESC", "id DESC")

	for _, cond := range r.filterConditions(filter) {
		builder = builder.Where(cond)
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	sqlStmt, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list orders: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.Status, &order.TotalAmount, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]*domain.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = &orders[i]
	}

	sqlStmt, args, err := r.builder.Select(
		"oi.id",
		"oi.order_id",
		"oi.movie_id",
		"oi.price_at_order",
		"m.name",
	).
		From("order_items oi").
		Join("movies m ON m.id = oi.movie_id").
		Where(squirrel.Eq{"oi.order_id": ids}).
		OrderBy("oi.id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build select order items: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStmt, args...)
	if err != nil {
		return fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MovieID, &item.PriceAtOrder, &item.MovieName); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if order, ok := index[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate order items: %w", err)
	}

	return nil
}

func (r *OrderRepository) Count(ctx context.Context, filter port.OrderFilter) (int, error) {
	builder := r.builder.Select("COUNT(*)").From("orders")
	for _, cond := range r.filterConditions(filter) {
		builder = builder.Where(cond)
	}

	sqlStmt, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count orders: %w", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, sqlStmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}

	return count, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	sqlStmt, args, err := r.builder.Update("orders").
		Set("status", string(status)).
		Where(squirrel.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update order status: %w", err)
	}

	tag, err := r.db.Exec(ctx, sqlStmt, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// HasPaidItem reports whether the movie appears in any paid order of the user.
func (r *OrderRepository) HasPaidItem(ctx context.Context, userID, movieID int64) (bool, error) {
	var one int
	err := r.db.QueryRow(ctx, `
		SELECT 1
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.user_id = $1 AND o.status = 'paid' AND oi.movie_id = $2
		LIMIT 1`,
		userID, movieID,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("order has paid item: %w", err)
	}

	return true, nil
}

var _ port.OrderRepository = (*OrderRepository)(nil)
