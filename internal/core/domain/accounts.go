package domain

import "time"

// GroupName enumerates the access groups a user can belong to.
type GroupName string

const (
	GroupUser      GroupName = "user"
	GroupModerator GroupName = "moderator"
	GroupAdmin     GroupName = "admin"
)

// Valid reports whether the group name is one of the seeded groups.
func (g GroupName) Valid() bool {
	switch g {
	case GroupUser, GroupModerator, GroupAdmin:
		return true
	}
	return false
}

// UserGroup is a seeded access group referenced by users.
type UserGroup struct {
	ID   int64
	Name GroupName
}

// User is an account holder. Email is stored lowercased and unique.
type User struct {
	ID             int64
	Email          string
	HashedPassword string
	IsActive       bool
	GroupID        int64
	GroupName      GroupName
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasGroup reports whether the user belongs to the named group.
func (u User) HasGroup(name GroupName) bool {
	return u.GroupName == name
}

// TokenKind distinguishes the persisted one-time token tables.
type TokenKind string

const (
	TokenActivation    TokenKind = "activation"
	TokenPasswordReset TokenKind = "password_reset"
	TokenRefresh       TokenKind = "refresh"
)

// UserToken is a persisted credential bound to a user: activation and
// password-reset tokens are unique per user and single-use, refresh tokens
// are one per login session.
type UserToken struct {
	ID        int64
	Kind      TokenKind
	Token     string
	UserID    int64
	ExpiresAt time.Time
}

// Expired reports whether the token expiry has passed relative to now,
// compared in UTC.
func (t UserToken) Expired(now time.Time) bool {
	return now.UTC().After(t.ExpiresAt.UTC())
}
