package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSecureToken returns a URL-safe random token with the requested
// number of random bytes. Used for activation, password reset, and refresh
// tokens stored server-side.
func GenerateSecureToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = 32
	}

	raw := make([]byte, byteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("security: generate token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}
