package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
)

var (
	// ErrNotFound is how every lookup reports absence, including a code that
	// was already consumed.
	ErrNotFound = errors.New("store: not found")

	// ErrAlreadyExists reports a uniqueness violation (username, email,
	// client id, token value).
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict reports a compare-and-replace that lost: the row changed
	// or disappeared since it was read.
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it and expose sub-repositories per record type.
//
// Every mutating repository method is a single atomic statement, so callers
// never need a transaction for correctness under concurrent requests.
// WithTx exists for multi-record setup such as seeding clients.
type Store interface {
	Accounts() Accounts
	Clients() Clients
	Codes() Codes
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	CreateAccount(ctx context.Context, a domain.Account) error
	GetAccountByID(ctx context.Context, id idx.ID) (domain.Account, error)

	// GetAccountByUsername matches case-insensitively.
	GetAccountByUsername(ctx context.Context, username string) (domain.Account, error)

	// GetAccountByEmail matches case-insensitively.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// ListAccounts returns the accounts that exist among ids, in no
	// particular order. Unknown ids are skipped.
	ListAccounts(ctx context.Context, ids []idx.ID) ([]domain.Account, error)

	UpdateLastLogin(ctx context.Context, id idx.ID, at time.Time) error
}

type Clients interface {
	CreateClient(ctx context.Context, c domain.Client) error
	GetClientByID(ctx context.Context, id idx.ID) (domain.Client, error)
	ListClients(ctx context.Context) ([]domain.Client, error)
	DeleteClient(ctx context.Context, id idx.ID) error
}

type Codes interface {
	CreateCode(ctx context.Context, c domain.AuthorizationCode) error

	// ConsumeCode atomically finds and deletes the code with the given kind
	// and value. Of any number of concurrent callers presenting the same
	// value at most one receives the code; the rest get ErrNotFound.
	// Expiry is not checked here.
	ConsumeCode(ctx context.Context, kind domain.CodeKind, value string) (domain.AuthorizationCode, error)

	// DeleteExpiredCodes removes codes that expired before now.
	DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error)
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error

	GetSessionByID(ctx context.Context, id idx.ID) (domain.Session, error)
	GetSessionByAccessToken(ctx context.Context, token string) (domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, token string) (domain.Session, error)

	// GetSessionByAccountAndClient returns the most recently created session
	// for the pair.
	GetSessionByAccountAndClient(ctx context.Context, accountID, clientID idx.ID) (domain.Session, error)

	// UpdateSession replaces the tokens and creation method of the session
	// with s.ID, provided its revision still equals s.Revision. The id,
	// account, client and creation time are never rewritten. The returned
	// session carries the new revision. A stale or missing row yields
	// ErrConflict.
	UpdateSession(ctx context.Context, s domain.Session) (domain.Session, error)

	// DeleteSession is idempotent.
	DeleteSession(ctx context.Context, id idx.ID) error

	// DeleteOtherSessions removes every session on clientID except keepID in
	// one statement and returns how many were removed.
	DeleteOtherSessions(ctx context.Context, clientID, keepID idx.ID) (int64, error)

	// DeleteOtherAccountSessions is DeleteOtherSessions narrowed to one
	// account.
	DeleteOtherAccountSessions(ctx context.Context, accountID, clientID, keepID idx.ID) (int64, error)

	// DeleteExpiredSessions removes sessions whose refresh token expired
	// before now. Such sessions can never be used or refreshed again.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
