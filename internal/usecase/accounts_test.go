package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/infra/security"
	"github.com/msubchak/online-cinema/internal/repository"
)

const strongTestPassword = "Sup3r!SecurePass#7890"

type accountFixture struct {
	service *AccountService
	users   *mockUserRepository
	tokens  *mockTokenRepository
	emails  *mockEmailSender
	events  *mockEventPublisher
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()

	jwtManager, err := security.NewJWTManager("access-secret", "refresh-secret", "cinema-test", 15*time.Minute, 7)
	if err != nil {
		t.Fatalf("NewJWTManager returned error: %v", err)
	}

	users := newMockUserRepository()
	tokens := newMockTokenRepository()
	emails := &mockEmailSender{}
	events := &mockEventPublisher{}

	service := NewAccountService(
		users,
		newMockGroupRepository(),
		tokens,
		jwtManager,
		security.DefaultPasswordValidator(),
		emails,
		events,
		"http://localhost:8000",
		zap.NewNop(),
	)

	return &accountFixture{service: service, users: users, tokens: tokens, emails: emails, events: events}
}

func (f *accountFixture) addActiveUser(t *testing.T, id int64, email, password string) *domain.User {
	t.Helper()

	hashed, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	return f.users.add(domain.User{
		ID:             id,
		Email:          email,
		HashedPassword: hashed,
		IsActive:       true,
		GroupID:        1,
		GroupName:      domain.GroupUser,
	})
}

func TestAccountService_Register(t *testing.T) {
	f := newAccountFixture(t)

	user, err := f.service.Register(context.Background(), "  NewUser@Example.COM ", strongTestPassword)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if user.Email != "newuser@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.IsActive {
		t.Fatalf("expected new account to be inactive")
	}
	if user.GroupName != domain.GroupUser {
		t.Fatalf("expected default group user, got %s", user.GroupName)
	}
	if f.users.createdUser.HashedPassword == strongTestPassword {
		t.Fatalf("password must not be stored in plain text")
	}
	if f.tokens.createCalls != 1 || f.tokens.lastCreated.Kind != domain.TokenActivation {
		t.Fatalf("expected one activation token, got %d calls kind %s", f.tokens.createCalls, f.tokens.lastCreated.Kind)
	}
	if f.emails.activationCalls != 1 {
		t.Fatalf("expected activation email, got %d", f.emails.activationCalls)
	}
	if !strings.Contains(f.emails.activationLink, "token=") {
		t.Fatalf("activation link missing token: %s", f.emails.activationLink)
	}
	if f.events.registeredCalls != 1 {
		t.Fatalf("expected registered event, got %d", f.events.registeredCalls)
	}
}

func TestAccountService_RegisterMalformedEmail(t *testing.T) {
	f := newAccountFixture(t)

	if _, err := f.service.Register(context.Background(), "foo", strongTestPassword); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if f.users.createCalls != 0 {
		t.Fatalf("no user should be created for a malformed email")
	}
}

func TestAccountService_RegisterDuplicateEmail(t *testing.T) {
	f := newAccountFixture(t)
	f.users.createErr = repository.ErrConflict

	if _, err := f.service.Register(context.Background(), "taken@example.com", strongTestPassword); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if f.tokens.createCalls != 0 {
		t.Fatalf("no token should be issued on conflict")
	}
}

func TestAccountService_RegisterWeakPassword(t *testing.T) {
	f := newAccountFixture(t)

	if _, err := f.service.Register(context.Background(), "user@example.com", "short"); !errors.Is(err, ErrPasswordPolicyViolation) {
		t.Fatalf("expected ErrPasswordPolicyViolation, got %v", err)
	}
	if f.users.createCalls != 0 {
		t.Fatalf("no user should be created for weak password")
	}
}

func TestAccountService_Activate(t *testing.T) {
	f := newAccountFixture(t)
	f.users.add(domain.User{ID: 7, Email: "user@example.com", IsActive: false, GroupName: domain.GroupUser})
	f.tokens.tokens = append(f.tokens.tokens, domain.UserToken{
		ID:        1,
		Kind:      domain.TokenActivation,
		Token:     "activation-token",
		UserID:    7,
		ExpiresAt: time.Now().Add(time.Hour),
	})

	if err := f.service.Activate(context.Background(), "User@Example.com", "activation-token"); err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}

	if f.users.setActiveCalls != 1 || !f.users.setActiveActive {
		t.Fatalf("expected account to be activated")
	}
	if f.tokens.deleteCalls != 1 {
		t.Fatalf("expected used token to be deleted")
	}
	if f.emails.completeCalls != 1 {
		t.Fatalf("expected activation complete email")
	}
	if f.events.activatedCalls != 1 {
		t.Fatalf("expected activated event")
	}
}

func TestAccountService_ActivateExpiredToken(t *testing.T) {
	f := newAccountFixture(t)
	f.users.add(domain.User{ID: 7, Email: "user@example.com", IsActive: false})
	f.tokens.tokens = append(f.tokens.tokens, domain.UserToken{
		ID:        1,
		Kind:      domain.TokenActivation,
		Token:     "stale-token",
		UserID:    7,
		ExpiresAt: time.Now().Add(-time.Hour),
	})

	if err := f.service.Activate(context.Background(), "user@example.com", "stale-token"); !errors.Is(err, ErrTokenInvalidOrExpired) {
		t.Fatalf("expected ErrTokenInvalidOrExpired, got %v", err)
	}
	if f.tokens.deleteCalls != 1 {
		t.Fatalf("expected expired token to be removed")
	}
	if f.users.setActiveCalls != 0 {
		t.Fatalf("account must stay inactive")
	}
}

func TestAccountService_ActivateAlreadyActive(t *testing.T) {
	f := newAccountFixture(t)
	f.addActiveUser(t, 7, "user@example.com", strongTestPassword)
	f.tokens.tokens = append(f.tokens.tokens, domain.UserToken{
		ID:        1,
		Kind:      domain.TokenActivation,
		Token:     "activation-token",
		UserID:    7,
		ExpiresAt: time.Now().Add(time.Hour),
	})

	if err := f.service.Activate(context.Background(), "user@example.com", "activation-token"); !errors.Is(err, ErrAccountAlreadyActive) {
		t.Fatalf("expected ErrAccountAlreadyActive, got %v", err)
	}
}

func TestAccountService_ActivateUnknownToken(t *testing.T) {
	f := newAccountFixture(t)
	f.users.add(domain.User{ID: 7, Email: "user@example.com"})

	if err := f.service.Activate(context.Background(), "user@example.com", "bogus"); !errors.Is(err, ErrTokenInvalidOrExpired) {
		t.Fatalf("expected ErrTokenInvalidOrExpired, got %v", err)
	}
}

func TestAccountService_Login(t *testing.T) {
	f := newAccountFixture(t)
	f.addActiveUser(t, 3, "user@example.com", strongTestPassword)

	pair, err := f.service.Login(context.Background(), "USER@example.com", strongTestPassword)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens to be issued")
	}
	if f.tokens.lastCreated.Kind != domain.TokenRefresh {
		t.Fatalf("expected refresh token to be persisted, got %s", f.tokens.lastCreated.Kind)
	}
	if f.tokens.lastCreated.UserID != 3 {
		t.Fatalf("refresh token bound to wrong user: %d", f.tokens.lastCreated.UserID)
	}
}

func TestAccountService_LoginWrongPassword(t *testing.T) {
	f := newAccountFixture(t)
	f.addActiveUser(t, 3, "user@example.com", strongTestPassword)

	if _, err := f.service.Login(context.Background(), "user@example.com", "Wrong!Pass1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAccountService_LoginUnknownEmail(t *testing.T) {
	f := newAccountFixture(t)

	if _, err := f.service.Login(context.Background(), "missing@example.com", strongTestPassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAccountService_LoginInactiveAccount(t *testing.T) {
	f := newAccountFixture(t)
	user := f.addActiveUser(t, 3, "user@example.com", strongTestPassword)
	user.IsActive = false

	if _, err := f.service.Login(context.Background(), "user@example.com", strongTestPassword); !errors.Is(err, ErrAccountNotActive) {
		t.Fatalf("expected ErrAccountNotActive, got %v", err)
	}
}

func TestAccountService_RefreshRevokedToken(t *testing.T) {
	f := newAccountFixture(t)
	f.addActiveUser(t, 3, "user@example.com", strongTestPassword)

	pair, err := f.service.Login(context.Background(), "user@example.com", strongTestPassword)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := f.service.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	if _, err := f.service.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, ErrRefreshTokenRevoked) {
		t.Fatalf("expected ErrRefreshTokenRevoked after logout, got %v", err)
	}
}

func TestAccountService_RefreshMalformedToken(t *testing.T) {
	f := newAccountFixture(t)

	if _, err := f.service.Refresh(context.Background(), "not-a-jwt"); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("expected ErrRefreshTokenInvalid, got %v", err)
	}
}

func TestAccountService_RefreshIssuesNewAccessToken(t *testing.T) {
	f := newAccountFixture(t)
	f.addActiveUser(t, 3, "user@example.com", strongTestPassword)

	pair, err := f.service.Login(context.Background(), "user@example.com", strongTestPassword)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	access, err := f.service.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if access == "" {
		t.Fatalf("expected a new access token")
	}
}

func TestAccountService_RequestPasswordResetUnknownEmail(t *testing.T) {
	f := newAccountFixture(t)

	if err := f.service.RequestPasswordReset(context.Background(), "missing@example.com"); err != nil {
		t.Fatalf("expected silence for unknown email, got %v", err)
	}
	if f.emails.resetCalls != 0 {
		t.Fatalf("no email should be sent for unknown address")
	}
	if f.tokens.createCalls != 0 {
		t.Fatalf("no token should be issued for unknown address")
	}
}

func TestAccountService_RequestPasswordReset(t *testing.T) {
	f := newAccountFixture(t)
	f.addActiveUser(t, 3, "user@example.com", strongTestPassword)

	if err := f.service.RequestPasswordReset(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}
	if f.tokens.lastCreated.Kind != domain.TokenPasswordReset {
		t.Fatalf("expected password reset token, got %s", f.tokens.lastCreated.Kind)
	}
	if f.emails.resetCalls != 1 {
		t.Fatalf("expected reset email, got %d", f.emails.resetCalls)
	}
}

func TestAccountService_CompletePasswordReset(t *testing.T) {
	f := newAccountFixture(t)
	f.addActiveUser(t, 3, "user@example.com", strongTestPassword)
	f.tokens.tokens = append(f.tokens.tokens,
		domain.UserToken{ID: 1, Kind: domain.TokenPasswordReset, Token: "reset-token", UserID: 3, ExpiresAt: time.Now().Add(time.Hour)},
		domain.UserToken{ID: 2, Kind: domain.TokenRefresh, Token: "open-session", UserID: 3, ExpiresAt: time.Now().Add(time.Hour)},
	)

	if err := f.service.CompletePasswordReset(context.Background(), "user@example.com", "reset-token", "N3w!SecurePass#4567"); err != nil {
		t.Fatalf("CompletePasswordReset returned error: %v", err)
	}

	if f.users.updatePasswordCalls != 1 {
		t.Fatalf("expected password update")
	}
	if len(f.tokens.tokens) != 0 {
		t.Fatalf("expected reset and refresh tokens to be cleared, %d left", len(f.tokens.tokens))
	}
	if f.emails.resetCompleteCalls != 1 {
		t.Fatalf("expected reset complete email")
	}
}

func TestAccountService_CompletePasswordResetBadToken(t *testing.T) {
	f := newAccountFixture(t)
	f.addActiveUser(t, 3, "user@example.com", strongTestPassword)
	f.tokens.tokens = append(f.tokens.tokens,
		domain.UserToken{ID: 1, Kind: domain.TokenPasswordReset, Token: "real-token", UserID: 3, ExpiresAt: time.Now().Add(time.Hour)},
	)

	if err := f.service.CompletePasswordReset(context.Background(), "user@example.com", "forged-token", "N3w!SecurePass#4567"); !errors.Is(err, ErrTokenInvalidOrExpired) {
		t.Fatalf("expected ErrTokenInvalidOrExpired, got %v", err)
	}
	if len(f.tokens.tokens) != 0 {
		t.Fatalf("a failed attempt must clear outstanding reset tokens")
	}
	if f.users.updatePasswordCalls != 0 {
		t.Fatalf("password must not change on bad token")
	}
}

func TestAccountService_ChangePasswordWrongOld(t *testing.T) {
	f := newAccountFixture(t)
	f.addActiveUser(t, 3, "user@example.com", strongTestPassword)

	if err := f.service.ChangePassword(context.Background(), 3, "Wrong!Pass1234", "N3w!SecurePass#4567"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAccountService_ChangePasswordRevokesSessions(t *testing.T) {
	f := newAccountFixture(t)
	f.addActiveUser(t, 3, "user@example.com", strongTestPassword)
	f.tokens.tokens = append(f.tokens.tokens,
		domain.UserToken{ID: 1, Kind: domain.TokenRefresh, Token: "open-session", UserID: 3, ExpiresAt: time.Now().Add(time.Hour)},
	)

	if err := f.service.ChangePassword(context.Background(), 3, strongTestPassword, "N3w!SecurePass#4567"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if len(f.tokens.tokens) != 0 {
		t.Fatalf("expected refresh tokens to be revoked")
	}
}

func TestAccountService_ChangeGroup(t *testing.T) {
	f := newAccountFixture(t)
	f.addActiveUser(t, 3, "user@example.com", strongTestPassword)

	if err := f.service.ChangeGroup(context.Background(), 3, domain.GroupModerator); err != nil {
		t.Fatalf("ChangeGroup returned error: %v", err)
	}
	if f.users.updateGroupGroupID != 2 {
		t.Fatalf("expected moderator group id 2, got %d", f.users.updateGroupGroupID)
	}

	if err := f.service.ChangeGroup(context.Background(), 3, "root"); !errors.Is(err, ErrInvalidGroup) {
		t.Fatalf("expected ErrInvalidGroup, got %v", err)
	}
}

func TestAccountService_ChangeGroupNoop(t *testing.T) {
	f := newAccountFixture(t)
	f.addActiveUser(t, 3, "user@example.com", strongTestPassword)

	if err := f.service.ChangeGroup(context.Background(), 3, domain.GroupUser); !errors.Is(err, ErrGroupUnchanged) {
		t.Fatalf("expected ErrGroupUnchanged, got %v", err)
	}
	if f.users.updateGroupCalls != 0 {
		t.Fatalf("a no-op change must not touch the user row")
	}
}

func TestAccountService_ChangeGroupUnknownUser(t *testing.T) {
	f := newAccountFixture(t)

	if err := f.service.ChangeGroup(context.Background(), 99, domain.GroupModerator); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
