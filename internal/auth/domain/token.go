package domain

import (
	"time"

	"github.com/aussiebroadwan/ut4master/pkg/cryptox"
)

// Token is an opaque bearer string paired with an absolute expiry. Two tokens
// are the same token when their values match; the expiry is advisory and
// checked by whoever consumes the token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// GenerateToken returns a fresh 256-bit token expiring ttl after now. It
// panics if the system entropy source fails.
func GenerateToken(now time.Time, ttl time.Duration) Token {
	return Token{
		Value:     cryptox.MustGenerateToken(cryptox.TokenSize256),
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the token is no longer valid at now. A token is
// expired from its expiry instant onwards.
func (t Token) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Equal compares by value only.
func (t Token) Equal(other Token) bool {
	return t.Value == other.Value
}

// TokenPair is what a successful grant hands back to the caller.
type TokenPair struct {
	SessionID    string
	AccountID    string
	ClientID     string
	AccessToken  Token
	RefreshToken Token
	Method       CreationMethod
}
