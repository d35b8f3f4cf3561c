package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/aussiebroadwan/ut4master/internal/auth/store"
)

var errNestedTx = errors.New("postgres: nested transactions are not supported")

// txStore keeps the context the transaction was started with, since
// store.Tx commits without one.
type txStore struct {
	ctx context.Context
	tx  pgx.Tx
}

func (t *txStore) Commit() error { return t.tx.Commit(t.ctx) }

// Rollback after a successful Commit is a no-op.
func (t *txStore) Rollback() error {
	err := t.tx.Rollback(t.ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

func (t *txStore) Close() error               { return nil }
func (t *txStore) Ping(context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error     { return nil }

func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, errNestedTx }

func (t *txStore) WithTx(context.Context, func(store.Tx) error) error { return errNestedTx }

func (t *txStore) Accounts() store.Accounts { return &accountsRepo{q: t.tx} }
func (t *txStore) Clients() store.Clients   { return &clientsRepo{q: t.tx} }
func (t *txStore) Codes() store.Codes       { return &codesRepo{q: t.tx} }
func (t *txStore) Sessions() store.Sessions { return &sessionsRepo{q: t.tx} }
