package port

import (
	"context"
	"time"

	"github.com/msubchak/online-cinema/internal/core/domain"
)

// TokenRepository persists one-time and refresh tokens. Activation and
// password-reset tokens are unique per user; Create replaces any existing
// token of the same kind for that user.
type TokenRepository interface {
	Create(ctx context.Context, token domain.UserToken) (int64, error)
	GetByUserAndToken(ctx context.Context, kind domain.TokenKind, userID int64, token string) (*domain.UserToken, error)
	GetByToken(ctx context.Context, kind domain.TokenKind, token string) (*domain.UserToken, error)
	Delete(ctx context.Context, kind domain.TokenKind, id int64) error
	DeleteByUser(ctx context.Context, kind domain.TokenKind, userID int64) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
