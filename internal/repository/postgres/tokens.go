package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/repository"
)

// TokenRepository implements port.TokenRepository across the three token
// tables. Activation and password-reset tokens are unique per user, so
// Create upserts on user_id for those kinds.
type TokenRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

func NewTokenRepository(exec pgExecutor) *TokenRepository {
	return &TokenRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func tokenTable(kind domain.TokenKind) (string, error) {
	switch kind {
	case domain.TokenActivation:
		return "activation_tokens", nil
	case domain.TokenPasswordReset:
		return "password_reset_tokens", nil
	case domain.TokenRefresh:
		return "refresh_tokens", nil
	}
	return "", fmt.Errorf("unknown token kind %q", kind)
}

func (r *TokenRepository) Create(ctx context.Context, token domain.UserToken) (int64, error) {
	table, err := tokenTable(token.Kind)
	if err != nil {
		return 0, err
	}

	builder := r.builder.Insert(table).
		Columns("token", "user_id", "expires_at").
		Values(token.Token, token.UserID, token.ExpiresAt.UTC())

	if token.Kind != domain.TokenRefresh {
		builder = builder.Suffix(
			"ON CONFLICT (user_id) DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at",
		)
	}

	sqlStmt, args, err := builder.Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert token: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, sqlStmt, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrConflict
		}
		return 0, fmt.Errorf("insert token: %w", err)
	}

	return id, nil
}

func (r *TokenRepository) GetByUserAndToken(ctx context.Context, kind domain.TokenKind, userID int64, token string) (*domain.UserToken, error) {
	return r.getBy(ctx, kind, squirrel.Eq{"user_id": userID, "token": token})
}

func (r *TokenRepository) GetByToken(ctx context.Context, kind domain.TokenKind, token string) (*domain.UserToken, error) {
	return r.getBy(ctx, kind, squirrel.Eq{"token": token})
}

func (r *TokenRepository) getBy(ctx context.Context, kind domain.TokenKind, cond squirrel.Eq) (*domain.UserToken, error) {
	table, err := tokenTable(kind)
	if err != nil {
		return nil, err
	}

	sqlStmt, args, err := r.builder.Select("id", "token", "user_id", "expires_at").
		From(table).
		Where(cond).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select token: %w", err)
	}

	result := domain.UserToken{Kind: kind}
	err = r.exec.QueryRow(ctx, sqlStmt, args...).Scan(
		&result.ID,
		&result.Token,
		&result.UserID,
		&result.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select token: %w", err)
	}

	return &result, nil
}

func (r *TokenRepository) Delete(ctx context.Context, kind domain.TokenKind, id int64) error {
	return r.deleteBy(ctx, kind, squirrel.Eq{"id": id})
}

func (r *TokenRepository) DeleteByUser(ctx context.Context, kind domain.TokenKind, userID int64) error {
	return r.deleteBy(ctx, kind, squirrel.Eq{"user_id": userID})
}

func (r *TokenRepository) deleteBy(ctx context.Context, kind domain.TokenKind, cond squirrel.Eq) error {
	table, err := tokenTable(kind)
	if err != nil {
		return err
	}

	sqlStmt, args, err := r.builder.Delete(table).Where(cond).ToSql()
	if err != nil {
		return fmt.Errorf("build delete token: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sqlStmt, args...); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}

	return nil
}

// DeleteExpired removes expired tokens from all three tables and reports
// the total number of rows removed.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64

	for _, kind := range []domain.TokenKind{domain.TokenActivation, domain.TokenPasswordReset, domain.TokenRefresh} {
		table, err := tokenTable(kind)
		if err != nil {
			return total, err
		}

		sqlStmt, args, err := r.builder.Delete(table).
			Where(squirrel.Lt{"expires_at": now.UTC()}).
			ToSql()
		if err != nil {
			return total, fmt.Errorf("build delete expired tokens: %w", err)
		}

		tag, err := r.exec.Exec(ctx, sqlStmt, args...)
		if err != nil {
			return total, fmt.Errorf("delete expired tokens from %s: %w", table, err)
		}
		total += tag.RowsAffected()
	}

	return total, nil
}

var _ port.TokenRepository = (*TokenRepository)(nil)
