package service

import (
	"time"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
)

// Lifetimes are the TTLs of everything the service issues.
type Lifetimes struct {
	AccessToken       time.Duration
	RefreshToken      time.Duration
	ExchangeCode      time.Duration
	AuthorizationCode time.Duration
}

func DefaultLifetimes() Lifetimes {
	return Lifetimes{
		AccessToken:       2 * time.Hour,
		RefreshToken:      8 * time.Hour,
		ExchangeCode:      5 * time.Minute,
		AuthorizationCode: 5 * time.Minute,
	}
}

// CodeTTL returns the lifetime of codes of the given kind.
func (l Lifetimes) CodeTTL(kind domain.CodeKind) time.Duration {
	if kind == domain.CodeKindAuthorization {
		return l.AuthorizationCode
	}
	return l.ExchangeCode
}

// Clock returns the current time. A nil Clock reads the wall clock.
type Clock func() time.Time

// Now is truncated to milliseconds, the resolution every driver persists.
func (c Clock) Now() time.Time {
	var t time.Time
	if c == nil {
		t = time.Now()
	} else {
		t = c()
	}
	return t.UTC().Truncate(time.Millisecond)
}
