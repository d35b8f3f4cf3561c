package domain

import (
	"time"

	"github.com/aussiebroadwan/ut4master/pkg/idx"
)

// CodeKind separates code families. A code can only be consumed by the flow
// of its own kind.
type CodeKind string

const (
	// CodeKindExchange hands an existing login over to another client
	// (browser to game) through the exchange_code grant.
	CodeKindExchange CodeKind = "exchange"
	// CodeKindAuthorization is redeemed through the authorization_code grant.
	CodeKindAuthorization CodeKind = "authorization"
)

func (k CodeKind) Valid() bool {
	return k == CodeKindExchange || k == CodeKindAuthorization
}

// AuthorizationCode is a single-use grant artifact. It is deleted on its
// first successful consumption.
type AuthorizationCode struct {
	ID        idx.ID
	AccountID idx.ID
	ClientID  idx.ID
	Token     Token
	Kind      CodeKind
	CreatedAt time.Time
}
