package port

import (
	"context"

	"github.com/msubchak/online-cinema/internal/core/domain"
)

// UserRepository persists user accounts and their group membership.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetActive(ctx context.Context, id int64, active bool) error
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
	UpdateGroup(ctx context.Context, id int64, groupID int64) error
}

// GroupRepository resolves and seeds the enumerated user groups.
type GroupRepository interface {
	GetByName(ctx context.Context, name domain.GroupName) (*domain.UserGroup, error)
	Seed(ctx context.Context) error
}
