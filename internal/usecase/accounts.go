package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/infra/logger"
	"github.com/msubchak/online-cinema/internal/infra/security"
	"github.com/msubchak/online-cinema/internal/repository"
)

const (
	activationTokenTTL    = 24 * time.Hour
	passwordResetTokenTTL = 24 * time.Hour
	secureTokenBytes      = 32
)

var (
	// ErrEmailTaken indicates a user with the email already exists.
	ErrEmailTaken = errors.New("a user with this email already exists")
	// ErrInvalidCredentials indicates a failed email or password check.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountNotActive indicates the account has not completed activation.
	ErrAccountNotActive = errors.New("account is not activated")
	// ErrAccountAlreadyActive indicates a repeated activation attempt.
	ErrAccountAlreadyActive = errors.New("account is already active")
	// ErrTokenInvalidOrExpired indicates a bad or stale one-time token.
	ErrTokenInvalidOrExpired = errors.New("invalid or expired token")
	// ErrRefreshTokenInvalid indicates the refresh token failed signature or
	// expiry validation.
	ErrRefreshTokenInvalid = errors.New("refresh token is invalid or expired")
	// ErrRefreshTokenRevoked indicates a well-formed refresh token that is no
	// longer stored, so the session it belonged to has been revoked.
	ErrRefreshTokenRevoked = errors.New("refresh token is revoked")
	// ErrInvalidEmail indicates the email address is malformed.
	ErrInvalidEmail = errors.New("a valid email address is required")
	// ErrPasswordPolicyViolation indicates the password fails complexity rules.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidGroup indicates an unknown group name.
	ErrInvalidGroup = errors.New("unknown user group")
	// ErrGroupUnchanged indicates the user is already in the target group.
	ErrGroupUnchanged = errors.New("user is already in this group")
)

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AccountService handles registration, activation, authentication, and
// password lifecycle.
type AccountService struct {
	users             port.UserRepository
	groups            port.GroupRepository
	tokens            port.TokenRepository
	jwt               *security.JWTManager
	passwordValidator *security.PasswordValidator
	emails            port.EmailSender
	events            port.EventPublisher
	baseURL           string
	logger            *zap.Logger
}

func NewAccountService(
	users port.UserRepository,
	groups port.GroupRepository,
	tokens port.TokenRepository,
	jwt *security.JWTManager,
	validator *security.PasswordValidator,
	emails port.EmailSender,
	events port.EventPublisher,
	baseURL string,
	log *zap.Logger,
) *AccountService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	return &AccountService{
		users:             users,
		groups:            groups,
		tokens:            tokens,
		jwt:               jwt,
		passwordValidator: validator,
		emails:            emails,
		events:            events,
		baseURL:           strings.TrimRight(baseURL, "/"),
		logger:            log,
	}
}

// AccessTokenTTL exposes the configured access token lifetime for
// login responses.
func (s *AccountService) AccessTokenTTL() time.Duration {
	return s.jwt.AccessTokenTTL()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an inactive account in the default group and issues an
// activation token delivered by email.
func (s *AccountService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	if err := s.passwordValidator.Validate(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	hashed, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	group, err := s.groups.GetByName(ctx, domain.GroupUser)
	if err != nil {
		return nil, fmt.Errorf("resolve default group: %w", err)
	}

	user := domain.User{
		Email:          email,
		HashedPassword: hashed,
		IsActive:       false,
		GroupID:        group.ID,
		GroupName:      group.Name,
	}

	id, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	user.ID = id

	token, err := s.issueToken(ctx, domain.TokenActivation, id, activationTokenTTL)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "activation email", func(ctx context.Context) error {
		return s.emails.SendActivationEmail(ctx, email, s.activationLink(email, token))
	})

	if err := s.events.PublishUserRegistered(ctx, domain.UserRegisteredEvent{
		UserID:       id,
		Email:        email,
		RegisteredAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("Publish user registered failed", zap.Error(err))
	}

	return &user, nil
}

// Activate flips the account to active if the token matches and has not
// expired. Expired tokens are removed on sight.
func (s *AccountService) Activate(ctx context.Context, email, token string) error {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenInvalidOrExpired
		}
		return err
	}

	stored, err := s.tokens.GetByUserAndToken(ctx, domain.TokenActivation, user.ID, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenInvalidOrExpired
		}
		return err
	}

	if stored.Expired(time.Now()) {
		if err := s.tokens.Delete(ctx, domain.TokenActivation, stored.ID); err != nil {
			s.logger.Warn("Delete expired activation token failed", zap.Error(err))
		}
		return ErrTokenInvalidOrExpired
	}

	if user.IsActive {
		return ErrAccountAlreadyActive
	}

	if err := s.users.SetActive(ctx, user.ID, true); err != nil {
		return err
	}
	if err := s.tokens.Delete(ctx, domain.TokenActivation, stored.ID); err != nil {
		s.logger.Warn("Delete used activation token failed", zap.Error(err))
	}

	s.notify(ctx, "activation complete email", func(ctx context.Context) error {
		return s.emails.SendActivationCompleteEmail(ctx, user.Email)
	})

	if err := s.events.PublishUserActivated(ctx, domain.UserActivatedEvent{
		UserID:      user.ID,
		Email:       user.Email,
		ActivatedAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("Publish user activated failed", zap.Error(err))
	}

	return nil
}

// ResendActivation issues a fresh activation token for an inactive account.
// It reports nothing about whether the email exists.
func (s *AccountService) ResendActivation(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if user.IsActive {
		return nil
	}

	token, err := s.issueToken(ctx, domain.TokenActivation, user.ID, activationTokenTTL)
	if err != nil {
		return err
	}

	s.notify(ctx, "activation email", func(ctx context.Context) error {
		return s.emails.SendActivationEmail(ctx, email, s.activationLink(email, token))
	})

	return nil
}

// Login authenticates the user and returns an access and refresh token
// pair. The refresh token is persisted so it can be revoked.
func (s *AccountService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := security.VerifyPassword(password, user.HashedPassword)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountNotActive
	}

	access, err := s.jwt.IssueAccessToken(user.ID, string(user.GroupName))
	if err != nil {
		return nil, err
	}

	refresh, err := s.jwt.IssueRefreshToken(user.ID, string(user.GroupName))
	if err != nil {
		return nil, err
	}

	_, err = s.tokens.Create(ctx, domain.UserToken{
		Kind:      domain.TokenRefresh,
		Token:     refresh,
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(s.jwt.RefreshTokenTTL()),
	})
	if err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	s.logger.Info("User logged in",
		zap.Int64("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
	)

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Logout revokes the presented refresh token.
func (s *AccountService) Logout(ctx context.Context, refreshToken string) error {
	stored, err := s.tokens.GetByToken(ctx, domain.TokenRefresh, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenInvalidOrExpired
		}
		return err
	}

	return s.tokens.Delete(ctx, domain.TokenRefresh, stored.ID)
}

// Refresh validates a stored refresh token and issues a new access token.
// A token that fails JWT validation is ErrRefreshTokenInvalid; a valid
// token that is no longer stored is ErrRefreshTokenRevoked.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwt.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", ErrRefreshTokenInvalid
	}

	stored, err := s.tokens.GetByToken(ctx, domain.TokenRefresh, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrRefreshTokenRevoked
		}
		return "", err
	}
	if stored.Expired(time.Now()) || stored.UserID != claims.UserID {
		return "", ErrRefreshTokenInvalid
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrRefreshTokenRevoked
		}
		return "", err
	}

	return s.jwt.IssueAccessToken(user.ID, string(user.GroupName))
}

// RequestPasswordReset issues a reset token for active accounts. The result
// is identical whether or not the email exists, to avoid enumeration.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	token, err := s.issueToken(ctx, domain.TokenPasswordReset, user.ID, passwordResetTokenTTL)
	if err != nil {
		return err
	}

	s.notify(ctx, "password reset email", func(ctx context.Context) error {
		return s.emails.SendPasswordResetEmail(ctx, email, s.passwordResetLink(email, token))
	})

	return nil
}

// CompletePasswordReset consumes a reset token and sets the new password.
// Any failure clears the user's outstanding reset tokens.
func (s *AccountService) CompletePasswordReset(ctx context.Context, email, token, password string) error {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenInvalidOrExpired
		}
		return err
	}
	if !user.IsActive {
		return ErrTokenInvalidOrExpired
	}

	stored, err := s.tokens.GetByUserAndToken(ctx, domain.TokenPasswordReset, user.ID, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if err := s.tokens.DeleteByUser(ctx, domain.TokenPasswordReset, user.ID); err != nil {
				s.logger.Warn("Clear reset tokens failed", zap.Error(err))
			}
			return ErrTokenInvalidOrExpired
		}
		return err
	}

	if stored.Expired(time.Now()) {
		if err := s.tokens.DeleteByUser(ctx, domain.TokenPasswordReset, user.ID); err != nil {
			s.logger.Warn("Clear reset tokens failed", zap.Error(err))
		}
		return ErrTokenInvalidOrExpired
	}

	if err := s.passwordValidator.Validate(password); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	hashed, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return err
	}
	if err := s.tokens.DeleteByUser(ctx, domain.TokenPasswordReset, user.ID); err != nil {
		s.logger.Warn("Clear reset tokens failed", zap.Error(err))
	}
	// Changing the password invalidates open sessions.
	if err := s.tokens.DeleteByUser(ctx, domain.TokenRefresh, user.ID); err != nil {
		s.logger.Warn("Revoke refresh tokens failed", zap.Error(err))
	}

	s.notify(ctx, "password reset complete email", func(ctx context.Context) error {
		return s.emails.SendPasswordResetCompleteEmail(ctx, user.Email)
	})

	return nil
}

// ChangePassword lets an authenticated user rotate their password.
func (s *AccountService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	ok, err := security.VerifyPassword(oldPassword, user.HashedPassword)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	if err := s.passwordValidator.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	hashed, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hashed); err != nil {
		return err
	}
	if err := s.tokens.DeleteByUser(ctx, domain.TokenRefresh, userID); err != nil {
		s.logger.Warn("Revoke refresh tokens failed", zap.Error(err))
	}

	return nil
}

// ChangeGroup moves a user into a different access group. Admin only,
// enforced at the transport layer. Moving a user into the group they are
// already in is rejected with ErrGroupUnchanged.
func (s *AccountService) ChangeGroup(ctx context.Context, userID int64, groupName domain.GroupName) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !groupName.Valid() {
		return ErrInvalidGroup
	}

	group, err := s.groups.GetByName(ctx, groupName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidGroup
		}
		return err
	}

	if user.GroupID == group.ID {
		return ErrGroupUnchanged
	}

	if err := s.users.UpdateGroup(ctx, userID, group.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info("User group changed",
		zap.Int64("user_id", userID),
		zap.String("group", string(groupName)),
	)

	return nil
}

// GetUser loads a user by id.
func (s *AccountService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AccountService) issueToken(ctx context.Context, kind domain.TokenKind, userID int64, ttl time.Duration) (string, error) {
	raw, err := security.GenerateSecureToken(secureTokenBytes)
	if err != nil {
		return "", err
	}

	_, err = s.tokens.Create(ctx, domain.UserToken{
		Kind:      kind,
		Token:     raw,
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("store %s token: %w", kind, err)
	}

	return raw, nil
}

// notify delivers an email best-effort. Delivery failures are logged and do
// not fail the calling operation.
func (s *AccountService) notify(ctx context.Context, kind string, send func(context.Context) error) {
	if err := send(ctx); err != nil {
		s.logger.Warn("Email delivery failed", zap.String("kind", kind), zap.Error(err))
	}
}

func (s *AccountService) activationLink(email, token string) string {
	return fmt.Sprintf("%s/api/v1/accounts/activate?email=%s&token=%s", s.baseURL, email, token)
}

func (s *AccountService) passwordResetLink(email, token string) string {
	return fmt.Sprintf("%s/api/v1/accounts/password-reset/complete?email=%s&token=%s", s.baseURL, email, token)
}
