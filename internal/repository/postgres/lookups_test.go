package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/msubchak/online-cinema/internal/repository"
)

func newLookupMock(t *testing.T) (pgxmock.PgxPoolIface, *LookupRepository) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	return mock, NewLookupRepository(mock, "genres")
}

func TestLookupRepository_List(t *testing.T) {
	mock, repo := newLookupMock(t)

	mock.ExpectQuery(`SELECT id, name FROM genres ORDER BY id`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "Drama").
			AddRow(int64(2), "Sci-Fi"))

	entities, err := repo.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entities))
	}
	if entities[1].Name != "Sci-Fi" {
		t.Fatalf("unexpected entry: %+v", entities[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLookupRepository_GetByIDMissing(t *testing.T) {
	mock, repo := newLookupMock(t)

	mock.ExpectQuery(`SELECT id, name FROM genres WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}))

	if _, err := repo.GetByID(context.Background(), 404); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupRepository_CreateConflict(t *testing.T) {
	mock, repo := newLookupMock(t)

	mock.ExpectQuery(`INSERT INTO genres \(name\) VALUES \(\$1\) RETURNING id`).
		WithArgs("Drama").
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

	if _, err := repo.Create(context.Background(), "Drama"); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestLookupRepository_UpdateNameMissing(t *testing.T) {
	mock, repo := newLookupMock(t)

	mock.ExpectExec(`UPDATE genres SET name = \$1 WHERE id = \$2`).
		WithArgs("Crime", int64(404)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.UpdateName(context.Background(), 404, "Crime"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupRepository_Delete(t *testing.T) {
	mock, repo := newLookupMock(t)

	mock.ExpectExec(`DELETE FROM genres WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := repo.Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
