package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize128 provides 128 bits of entropy (22 chars base64url), the
	// floor for anything handed out as a bearer credential.
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (43 chars base64url). Access
	// tokens, refresh tokens, codes and client secrets use this size.
	TokenSize256 = 32
)

// GenerateToken creates a cryptographically secure random token of the
// specified byte length, base64url-encoded without padding.
func GenerateToken(size int) (string, error) {
	if size < TokenSize128 {
		return "", fmt.Errorf("token size must be at least %d bytes, got %d", TokenSize128, size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MustGenerateToken is like GenerateToken but panics on error. A broken
// entropy source must never degrade into a predictable credential.
func MustGenerateToken(size int) string {
	token, err := GenerateToken(size)
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to generate token: %v", err))
	}
	return token
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token,
// base64url-encoded (43 chars).
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// TokenHint returns a short fingerprint prefix that is safe to log in place
// of a bearer value.
func TokenHint(token string) string {
	if token == "" {
		return ""
	}
	return FingerprintToken(token)[:10]
}
