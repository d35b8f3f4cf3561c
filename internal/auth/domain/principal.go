package domain

import "github.com/aussiebroadwan/ut4master/pkg/idx"

// PrincipalKind tags which variant of Principal is populated.
type PrincipalKind int

const (
	PrincipalAnonymous PrincipalKind = iota
	// PrincipalSession came from a bearer access token and carries account,
	// client and session ids.
	PrincipalSession
	// PrincipalClient came from basic client credentials and has no account.
	PrincipalClient
)

func (k PrincipalKind) String() string {
	switch k {
	case PrincipalSession:
		return "session"
	case PrincipalClient:
		return "client"
	default:
		return "anonymous"
	}
}

// Principal is the identity a request resolved to.
type Principal struct {
	Kind      PrincipalKind
	AccountID idx.ID
	ClientID  idx.ID
	SessionID idx.ID
}

func AnonymousPrincipal() Principal {
	return Principal{Kind: PrincipalAnonymous}
}

func SessionPrincipal(s Session) Principal {
	return Principal{
		Kind:      PrincipalSession,
		AccountID: s.AccountID,
		ClientID:  s.ClientID,
		SessionID: s.ID,
	}
}

func ClientPrincipal(clientID idx.ID) Principal {
	return Principal{Kind: PrincipalClient, ClientID: clientID}
}

func (p Principal) IsAnonymous() bool { return p.Kind == PrincipalAnonymous }

// HasAccount reports whether the principal acts for a player account.
func (p Principal) HasAccount() bool {
	return p.Kind == PrincipalSession && !p.AccountID.IsZero()
}
