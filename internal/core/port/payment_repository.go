package port

import (
	"context"
	"time"

	"github.com/msubchak/online-cinema/internal/core/domain"
)

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	UserID      *int64
	Status      *domain.PaymentStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// PaymentRepository persists payments and their line items. Create writes
// the payment and all items in one transaction.
type PaymentRepository interface {
	Create(ctx context.Context, payment domain.Payment) (*domain.Payment, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]domain.Payment, error)
	Count(ctx context.Context, filter PaymentFilter) (int, error)
	UpdateStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) error
}
