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

// UserRepository implements port.UserRepository backed by PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a user and returns the generated id. A duplicate email
// yields repository.ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (int64, error) {
	sqlStmt, args, err := r.builder.Insert("users").
		Columns("email", "hashed_password", "is_active", "group_id").
		Values(user.Email, user.HashedPassword, user.IsActive, user.GroupID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert user: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, sqlStmt, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrConflict
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	return id, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"u.id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"u.email": email})
}

func (r *UserRepository) getBy(ctx context.Context, cond squirrel.Eq) (*domain.User, error) {
	sqlStmt, args, err := r.builder.Select(
		"u.id",
		"u.email",
		"u.hashed_password",
		"u.is_active",
		"u.group_id",
		"g.name",
		"u.created_at",
		"u.updated_at",
	).
		From("users u").
		Join("user_groups g ON g.id = u.group_id").
		Where(cond).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user: %w", err)
	}

	var user domain.User
	err = r.exec.QueryRow(ctx, sqlStmt, args...).Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.IsActive,
		&user.GroupID,
		&user.GroupName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.update(ctx, id, squirrel.Eq{"is_active": active})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	return r.update(ctx, id, squirrel.Eq{"hashed_password": hashedPassword})
}

func (r *UserRepository) UpdateGroup(ctx context.Context, id int64, groupID int64) error {
	return r.update(ctx, id, squirrel.Eq{"group_id": groupID})
}

func (r *UserRepository) update(ctx context.Context, id int64, assignments squirrel.Eq) error {
	builder := r.builder.Update("users").Where(squirrel.Eq{"id": id})
	for column, value := range assignments {
		builder = builder.Set(column, value)
	}
	builder = builder.Set("updated_at", squirrel.Expr("now()"))

	sqlStmt, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build update user: %w", err)
	}

	tag, err := r.exec.Exec(ctx, sqlStmt, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.UserRepository = (*UserRepository)(nil)

// GroupRepository resolves and seeds the enumerated user groups.
type GroupRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

func NewGroupRepository(exec pgExecutor) *GroupRepository {
	return &GroupRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *GroupRepository) GetByName(ctx context.Context, name domain.GroupName) (*domain.UserGroup, error) {
	sqlStmt, args, err := r.builder.Select("id", "name").
		From("user_groups").
		Where(squirrel.Eq{"name": string(name)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select group: %w", err)
	}

	var group domain.UserGroup
	if err := r.exec.QueryRow(ctx, sqlStmt, args...).Scan(&group.ID, &group.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select group: %w", err)
	}

	return &group, nil
}

// Seed inserts the enumerated groups, skipping ones that already exist.
func (r *GroupRepository) Seed(ctx context.Context) error {
	builder := r.builder.Insert("user_groups").Columns("name")
	for _, name := range []domain.GroupName{domain.GroupUser, domain.GroupModerator, domain.GroupAdmin} {
		builder = builder.Values(string(name))
	}

	sqlStmt, args, err := builder.Suffix("ON CONFLICT (name) DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build seed groups: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sqlStmt, args...); err != nil {
		return fmt.Errorf("seed groups: %w", err)
	}

	return nil
}

var _ port.GroupRepository = (*GroupRepository)(nil)
