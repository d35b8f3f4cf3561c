package domain

import (
	"time"

	"github.com/aussiebroadwan/ut4master/pkg/idx"
)

// Client is a calling application (game build, web front end, dedicated
// server). A client without a secret hash is public and authenticates by id
// alone.
type Client struct {
	ID         idx.ID
	Name       string
	SecretHash string

	// SingleSession clients keep at most one live session. Issuing a new
	// session evicts every other session on the client.
	SingleSession bool

	CreatedAt time.Time
}

// IsConfidential reports whether the client must present a secret.
func (c Client) IsConfidential() bool {
	return c.SecretHash != ""
}
