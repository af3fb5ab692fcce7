package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("security: token expired")
	ErrTokenInvalid = errors.New("security: token invalid")
)

// TokenType distinguishes access tokens from refresh tokens so one cannot be
// presented in place of the other.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// AccessClaims is the payload carried inside signed JWTs.
type AccessClaims struct {
	UserID    int64     `json:"uid"`
	Group     string    `json:"group"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HMAC-signed tokens. Access and refresh
// tokens use independent secrets so rotating one does not invalidate the
// other.
type JWTManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

func NewJWTManager(accessSecret, refreshSecret, issuer string, accessTTL time.Duration, refreshDays int) (*JWTManager, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("security: jwt secrets must be configured")
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshDays <= 0 {
		refreshDays = 7
	}

	return &JWTManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    time.Duration(refreshDays) * 24 * time.Hour,
		issuer:        issuer,
	}, nil
}

// AccessTokenTTL reports the configured lifetime of access tokens.
func (m *JWTManager) AccessTokenTTL() time.Duration {
	return m.accessTTL
}

// RefreshTokenTTL reports the configured lifetime of refresh tokens.
func (m *JWTManager) RefreshTokenTTL() time.Duration {
	return m.refreshTTL
}

// IssueAccessToken signs a short-lived access token for the user.
func (m *JWTManager) IssueAccessToken(userID int64, group string) (string, error) {
	return m.issue(userID, group, AccessToken, m.accessSecret, m.accessTTL)
}

// IssueRefreshToken signs a long-lived refresh token for the user.
func (m *JWTManager) IssueRefreshToken(userID int64, group string) (string, error) {
	return m.issue(userID, group, RefreshToken, m.refreshSecret, m.refreshTTL)
}

func (m *JWTManager) issue(userID int64, group string, kind TokenType, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := AccessClaims{
		UserID:    userID,
		Group:     group,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("security: sign %s token: %w", kind, err)
	}
	return signed, nil
}

// ParseAccessToken validates an access token and returns its claims.
func (m *JWTManager) ParseAccessToken(raw string) (*AccessClaims, error) {
	return m.parse(raw, AccessToken, m.accessSecret)
}

// ParseRefreshToken validates a refresh token and returns its claims.
func (m *JWTManager) ParseRefreshToken(raw string) (*AccessClaims, error) {
	return m.parse(raw, RefreshToken, m.refreshSecret)
}

func (m *JWTManager) parse(raw string, kind TokenType, secret []byte) (*AccessClaims, error) {
	claims := &AccessClaims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid || claims.TokenType != kind {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
