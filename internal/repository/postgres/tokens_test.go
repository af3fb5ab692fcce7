package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/repository"
)

func newTokenMock(t *testing.T) (pgxmock.PgxPoolIface, *TokenRepository) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	return mock, NewTokenRepository(mock)
}

func TestTokenRepository_CreateActivationUpserts(t *testing.T) {
	mock, repo := newTokenMock(t)

	expires := time.Now().UTC().Add(24 * time.Hour)

	mock.ExpectQuery(`INSERT INTO activation_tokens \(token,user_id,expires_at\) VALUES \(\$1,\$2,\$3\) ON CONFLICT \(user_id\) DO UPDATE SET token = EXCLUDED\.token, expires_at = EXCLUDED\.expires_at RETURNING id`).
		WithArgs("raw-token", int64(7), expires).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

	id, err := repo.Create(context.Background(), domain.UserToken{
		Kind:      domain.TokenActivation,
		Token:     "raw-token",
		UserID:    7,
		ExpiresAt: expires,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected id 1, got %d", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTokenRepository_CreateRefreshNoUpsert(t *testing.T) {
	mock, repo := newTokenMock(t)

	expires := time.Now().UTC().Add(7 * 24 * time.Hour)

	mock.ExpectQuery(`INSERT INTO refresh_tokens \(token,user_id,expires_at\) VALUES \(\$1,\$2,\$3\) RETURNING id`).
		WithArgs("refresh-token", int64(7), expires).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(9)))

	if _, err := repo.Create(context.Background(), domain.UserToken{
		Kind:      domain.TokenRefresh,
		Token:     "refresh-token",
		UserID:    7,
		ExpiresAt: expires,
	}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
}

func TestTokenRepository_GetByTokenMissing(t *testing.T) {
	mock, repo := newTokenMock(t)

	mock.ExpectQuery(`SELECT id, token, user_id, expires_at FROM refresh_tokens WHERE token = \$1`).
		WithArgs("bogus").
		WillReturnRows(pgxmock.NewRows([]string{"id", "token", "user_id", "expires_at"}))

	if _, err := repo.GetByToken(context.Background(), domain.TokenRefresh, "bogus"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTokenRepository_DeleteExpiredSweepsAllTables(t *testing.T) {
	mock, repo := newTokenMock(t)

	now := time.Now().UTC()

	mock.ExpectExec(`DELETE FROM activation_tokens WHERE expires_at < \$1`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`DELETE FROM password_reset_tokens WHERE expires_at < \$1`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE expires_at < \$1`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	total, err := repo.DeleteExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("DeleteExpired returned error: %v", err)
	}
	if total != 6 {
		t.Fatalf("expected 6 rows removed, got %d", total)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTokenRepository_UnknownKind(t *testing.T) {
	_, repo := newTokenMock(t)

	if _, err := repo.Create(context.Background(), domain.UserToken{Kind: "mystery"}); err == nil {
		t.Fatalf("expected error for unknown token kind")
	}
}
