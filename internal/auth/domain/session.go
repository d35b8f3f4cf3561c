package domain

import (
	"time"

	"github.com/aussiebroadwan/ut4master/pkg/idx"
)

// CreationMethod records which grant produced a session.
type CreationMethod string

const (
	MethodPassword          CreationMethod = "password"
	MethodExchange          CreationMethod = "exchange"
	MethodClientCredentials CreationMethod = "client_credentials"
)

// Session is an authenticated (account, client) context. ID never changes
// once assigned; refresh replaces both tokens in place.
//
// A session whose access token has expired is still a valid row. Expiry is
// enforced when the token is presented, not by deletion.
type Session struct {
	ID             idx.ID
	AccountID      idx.ID // idx.Zero for client_credentials sessions
	ClientID       idx.ID
	AccessToken    Token
	RefreshToken   Token
	CreationMethod CreationMethod
	CreatedAt      time.Time

	// Revision is bumped by every successful update and guards concurrent
	// refreshes of the same session.
	Revision int64
}

// IsSystem reports whether the session has no account behind it.
func (s Session) IsSystem() bool {
	return s.AccountID.IsZero()
}

// Pair returns the caller-facing view of the session's tokens.
func (s Session) Pair() TokenPair {
	return TokenPair{
		SessionID:    s.ID.String(),
		AccountID:    s.AccountID.String(),
		ClientID:     s.ClientID.String(),
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		Method:       s.CreationMethod,
	}
}
