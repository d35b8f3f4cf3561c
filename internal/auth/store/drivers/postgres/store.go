// Package postgres is the PostgreSQL store driver, built on a pgx connection
// pool.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/aussiebroadwan/ut4master/internal/auth/store"
)

// querier is the statement surface shared by the pool and a pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// poolIface is satisfied by *pgxpool.Pool and pgxmock.PgxPoolIface.
type poolIface interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

type Store struct {
	pool poolIface
	dsn  string
}

// NewStore connects a pool to the database at dsn. The connection is not
// verified; call Ping for that.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_POOL_FAILED").With("operation", "create pool").Wrap(err)
	}
	return &Store{pool: pool, dsn: dsn}, nil
}

func newStoreWithPool(pool poolIface) *Store {
	return &Store{pool: pool}
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return oops.Code("DB_PING_FAILED").Wrap(err)
	}
	return nil
}

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	return &txStore{ctx: ctx, tx: tx}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Accounts() store.Accounts { return &accountsRepo{q: s.pool} }
func (s *Store) Clients() store.Clients   { return &clientsRepo{q: s.pool} }
func (s *Store) Codes() store.Codes       { return &codesRepo{q: s.pool} }
func (s *Store) Sessions() store.Sessions { return &sessionsRepo{q: s.pool} }

const uniqueViolation = "23505"

// wrapWrite tags uniqueness violations with store.ErrAlreadyExists.
func wrapWrite(code string, err error, kv ...any) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		err = errors.Join(store.ErrAlreadyExists, err)
	}
	return oops.Code(code).With(kv...).Wrap(err)
}

// wrapRead maps pgx.ErrNoRows onto store.ErrNotFound.
func wrapRead(code string, err error, kv ...any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return oops.Code("NOT_FOUND").With(kv...).Wrap(store.ErrNotFound)
	}
	return oops.Code(code).With(kv...).Wrap(err)
}
