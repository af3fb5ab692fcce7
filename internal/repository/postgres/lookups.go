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

// LookupRepository manages one name-keyed lookup table. The same
// implementation backs genres, stars, directors, and certifications.
type LookupRepository struct {
	exec    pgExecutor
	table   string
	builder squirrel.StatementBuilderType
}

func NewLookupRepository(exec pgExecutor, table string) *LookupRepository {
	return &LookupRepository{
		exec:    exec,
		table:   table,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *LookupRepository) List(ctx context.Context, limit, offset int) ([]domain.NamedEntity, error) {
	builder := r.builder.Select("id", "name").
		From(r.table).
		OrderBy("id")

	if limit > 0 {
		builder = builder.Limit(uint64(limit)).Offset(uint64(offset))
	}

	sqlStmt, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list %s: %w", r.table, err)
	}

	rows, err := r.exec.Query(ctx, sqlStmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table, err)
	}
	defer rows.Close()

	var entities []domain.NamedEntity
	for rows.Next() {
		var entity domain.NamedEntity
		if err := rows.Scan(&entity.ID, &entity.Name); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", r.table, err)
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", r.table, err)
	}

	return entities, nil
}

func (r *LookupRepository) Count(ctx context.Context) (int, error) {
	sqlStmt, args, err := r.builder.Select("COUNT(*)").From(r.table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count %s: %w", r.table, err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, sqlStmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.table, err)
	}

	return count, nil
}

func (r *LookupRepository) GetByID(ctx context.Context, id int64) (*domain.NamedEntity, error) {
	sqlStmt, args, err := r.builder.Select("id", "name").
		From(r.table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select %s: %w", r.table, err)
	}

	var entity domain.NamedEntity
	if err := r.exec.QueryRow(ctx, sqlStmt, args...).Scan(&entity.ID, &entity.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select %s: %w", r.table, err)
	}

	return &entity, nil
}

func (r *LookupRepository) Create(ctx context.Context, name string) (int64, error) {
	sqlStmt, args, err := r.builder.Insert(r.table).
		Columns("name").
		Values(name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert %s: %w", r.table, err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, sqlStmt, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrConflict
		}
		return 0, fmt.Errorf("insert %s: %w", r.table, err)
	}

	return id, nil
}

func (r *LookupRepository) UpdateName(ctx context.Context, id int64, name string) error {
	sqlStmt, args, err := r.builder.Update(r.table).
		Set("name", name).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update %s: %w", r.table, err)
	}

	tag, err := r.exec.Exec(ctx, sqlStmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("update %s: %w", r.table, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *LookupRepository) Delete(ctx context.Context, id int64) error {
	sqlStmt, args, err := r.builder.Delete(r.table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete %s: %w", r.table, err)
	}

	tag, err := r.exec.Exec(ctx, sqlStmt, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.table, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.LookupRepository = (*LookupRepository)(nil)
