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

// PaymentRepository implements port.PaymentRepository backed by PostgreSQL.
type PaymentRepository struct {
	db      pgBeginner
	builder squirrel.StatementBuilderType
}

func NewPaymentRepository(db pgBeginner) *PaymentRepository {
	return &PaymentRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create writes the payment and all line items in one transaction. A
// duplicate external payment id yields repository.ErrConflict.
func (r *PaymentRepository) Create(ctx context.Context, payment domain.Payment) (*domain.Payment, error) {
	created := payment

	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			"INSERT INTO payments (user_id, order_id, status, amount, external_payment_id) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at",
			payment.UserID, payment.OrderID, string(payment.Status), payment.Amount, payment.ExternalPaymentID,
		).Scan(&created.ID, &created.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrConflict
			}
			return fmt.Errorf("insert payment: %w", err)
		}

		for i := range created.Items {
			item := &created.Items[i]
			item.PaymentID = created.ID

			err := tx.QueryRow(ctx,
				"INSERT INTO payment_items (payment_id, order_item_id, price_at_payment) VALUES ($1, $2, $3) RETURNING id",
				created.ID, item.OrderItemID, item.PriceAtPayment,
			).Scan(&item.ID)
			if err != nil {
				return fmt.Errorf("insert payment item: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *PaymentRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Payment, error) {
	sqlStmt, args, err := r.builder.Select("id", "user_id", "order_id", "status", "amount", "external_payment_id", "created_at").
		From("payments").
		Where(squirrel.Eq{"external_payment_id": externalID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select payment: %w", err)
	}

	var payment domain.Payment
	err = r.db.QueryRow(ctx, sqlStmt, args...).Scan(
		&payment.ID,
		&payment.UserID,
		&payment.OrderID,
		&payment.Status,
		&payment.Amount,
		&payment.ExternalPaymentID,
		&payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select payment: %w", err)
	}

	return &payment, nil
}

func (r *PaymentRepository) filterConditions(filter port.PaymentFilter) []squirrel.Sqlizer {
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

func (r *PaymentRepository) List(ctx context.Context, filter port.PaymentFilter) ([]domain.Payment, error) {
	builder := r.builder.Select("id", "user_id", "order_id", "status", "amount", "external_payment_id", "created_at").
		From("payments").
		OrderBy("created_at DESC", "id DESC")

	for _, cond := range r.filterConditions(filter) {
		builder = builder.Where(cond)
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	sqlStmt, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list payments: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var payment domain.Payment
		if err := rows.Scan(
			&payment.ID,
			&payment.UserID,
			&payment.OrderID,
			&payment.Status,
			&payment.Amount,
			&payment.ExternalPaymentID,
			&payment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}

	return payments, nil
}

func (r *PaymentRepository) Count(ctx context.Context, filter port.PaymentFilter) (int, error) {
	builder := r.builder.Select("COUNT(*)").From("payments")
	for _, cond := range r.filterConditions(filter) {
		builder = builder.Where(cond)
	}

	sqlStmt, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count payments: %w", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, sqlStmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count payments: %w", err)
	}

	return count, nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) error {
	sqlStmt, args, err := r.builder.Update("payments").
		Set("status", string(status)).
		Where(squirrel.Eq{"id": paymentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update payment status: %w", err)
	}

	tag, err := r.db.Exec(ctx, sqlStmt, args...)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.PaymentRepository = (*PaymentRepository)(nil)
