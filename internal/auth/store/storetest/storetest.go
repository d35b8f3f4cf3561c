// Package storetest holds a behavioural suite every store driver must pass.
package storetest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, migrated and empty store.
type Factory func(t *testing.T) store.Store

// base is truncated to milliseconds so round trips compare equal.
var base = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func Run(t *testing.T, newStore Factory) {
	t.Run("Accounts", func(t *testing.T) { testAccounts(t, newStore(t)) })
	t.Run("Clients", func(t *testing.T) { testClients(t, newStore(t)) })
	t.Run("CodesConsumeOnce", func(t *testing.T) { testCodesConsumeOnce(t, newStore(t)) })
	t.Run("CodesConcurrentConsume", func(t *testing.T) { testCodesConcurrentConsume(t, newStore(t)) })
	t.Run("CodesExpiredSweep", func(t *testing.T) { testCodesExpiredSweep(t, newStore(t)) })
	t.Run("SessionsLookup", func(t *testing.T) { testSessionsLookup(t, newStore(t)) })
	t.Run("SessionsUpdateRevision", func(t *testing.T) { testSessionsUpdateRevision(t, newStore(t)) })
	t.Run("SessionsDeleteOthers", func(t *testing.T) { testSessionsDeleteOthers(t, newStore(t)) })
	t.Run("SessionsExpiredSweep", func(t *testing.T) { testSessionsExpiredSweep(t, newStore(t)) })
	t.Run("WithTxRollback", func(t *testing.T) { testWithTxRollback(t, newStore(t)) })
}

func NewSession(accountID, clientID idx.ID, createdAt time.Time) domain.Session {
	return domain.Session{
		ID:             idx.NewAt(createdAt),
		AccountID:      accountID,
		ClientID:       clientID,
		AccessToken:    domain.GenerateToken(createdAt, 2*time.Hour),
		RefreshToken:   domain.GenerateToken(createdAt, 8*time.Hour),
		CreationMethod: domain.MethodPassword,
		CreatedAt:      createdAt,
	}
}

func testAccounts(t *testing.T, s store.Store) {
	ctx := context.Background()
	repo := s.Accounts()

	a := domain.Account{
		ID:           idx.New(),
		Username:     "Malcolm",
		Email:        "malcolm@example.com",
		PasswordHash: "hash",
		CreatedAt:    base,
	}
	require.NoError(t, repo.CreateAccount(ctx, a))

	dup := a
	dup.ID = idx.New()
	dup.Email = ""
	dup.Username = "MALCOLM"
	require.ErrorIs(t, repo.CreateAccount(ctx, dup), store.ErrAlreadyExists)

	got, err := repo.GetAccountByUsername(ctx, "malcolm")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)
	require.Equal(t, base, got.CreatedAt)
	require.Nil(t, got.LastLoginAt)

	got, err = repo.GetAccountByEmail(ctx, "MALCOLM@example.com")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)

	_, err = repo.GetAccountByID(ctx, idx.New())
	require.ErrorIs(t, err, store.ErrNotFound)

	login := base.Add(time.Minute)
	require.NoError(t, repo.UpdateLastLogin(ctx, a.ID, login))
	got, err = repo.GetAccountByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	require.Equal(t, login, *got.LastLoginAt)

	require.ErrorIs(t, repo.UpdateLastLogin(ctx, idx.New(), login), store.ErrNotFound)

	other := domain.Account{ID: idx.New(), Username: "xan", PasswordHash: "hash", CreatedAt: base}
	require.NoError(t, repo.CreateAccount(ctx, other))

	list, err := repo.ListAccounts(ctx, []idx.ID{a.ID, other.ID, idx.New()})
	require.NoError(t, err)
	require.Len(t, list, 2)

	list, err = repo.ListAccounts(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, list)
}

func testClients(t *testing.T, s store.Store) {
	ctx := context.Background()
	repo := s.Clients()

	public := domain.Client{ID: idx.New(), Name: "launcher", CreatedAt: base}
	secret := domain.Client{ID: idx.New(), Name: "game", SecretHash: "hash", SingleSession: true, CreatedAt: base}
	require.NoError(t, repo.CreateClient(ctx, public))
	require.NoError(t, repo.CreateClient(ctx, secret))
	require.ErrorIs(t, repo.CreateClient(ctx, public), store.ErrAlreadyExists)

	got, err := repo.GetClientByID(ctx, secret.ID)
	require.NoError(t, err)
	require.True(t, got.SingleSession)
	require.True(t, got.IsConfidential())

	got, err = repo.GetClientByID(ctx, public.ID)
	require.NoError(t, err)
	require.False(t, got.IsConfidential())

	list, err := repo.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, repo.DeleteClient(ctx, public.ID))
	require.ErrorIs(t, repo.DeleteClient(ctx, public.ID), store.ErrNotFound)
}

func newCode(kind domain.CodeKind, createdAt time.Time, ttl time.Duration) domain.AuthorizationCode {
	return domain.AuthorizationCode{
		ID:        idx.NewAt(createdAt),
		AccountID: idx.New(),
		ClientID:  idx.New(),
		Token:     domain.GenerateToken(createdAt, ttl),
		Kind:      kind,
		CreatedAt: createdAt,
	}
}

func testCodesConsumeOnce(t *testing.T, s store.Store) {
	ctx := context.Background()
	repo := s.Codes()

	c := newCode(domain.CodeKindExchange, base, 5*time.Minute)
	require.NoError(t, repo.CreateCode(ctx, c))

	_, err := repo.ConsumeCode(ctx, domain.CodeKindAuthorization, c.Token.Value)
	require.ErrorIs(t, err, store.ErrNotFound, "kind must match")

	got, err := repo.ConsumeCode(ctx, domain.CodeKindExchange, c.Token.Value)
	require.NoError(t, err)
	require.Equal(t, c.ID, got.ID)
	require.Equal(t, c.AccountID, got.AccountID)
	require.Equal(t, c.ClientID, got.ClientID)
	require.Equal(t, c.Token.ExpiresAt, got.Token.ExpiresAt)

	_, err = repo.ConsumeCode(ctx, domain.CodeKindExchange, c.Token.Value)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testCodesConcurrentConsume(t *testing.T, s store.Store) {
	ctx := context.Background()
	repo := s.Codes()

	c := newCode(domain.CodeKindAuthorization, base, 5*time.Minute)
	require.NoError(t, repo.CreateCode(ctx, c))

	const workers = 16
	var (
		wg      sync.WaitGroup
		winners atomic.Int32
		start   = make(chan struct{})
		errs    = make(chan error, workers)
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := repo.ConsumeCode(ctx, domain.CodeKindAuthorization, c.Token.Value)
			switch {
			case err == nil:
				winners.Add(1)
			case !errors.Is(err, store.ErrNotFound):
				errs <- err
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, winners.Load())
}

func testCodesExpiredSweep(t *testing.T, s store.Store) {
	ctx := context.Background()
	repo := s.Codes()

	expired := newCode(domain.CodeKindExchange, base, time.Minute)
	live := newCode(domain.CodeKindExchange, base, time.Hour)
	require.NoError(t, repo.CreateCode(ctx, expired))
	require.NoError(t, repo.CreateCode(ctx, live))

	n, err := repo.DeleteExpiredCodes(ctx, base.Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = repo.ConsumeCode(ctx, domain.CodeKindExchange, live.Token.Value)
	require.NoError(t, err)
}

func testSessionsLookup(t *testing.T, s store.Store) {
	ctx := context.Background()
	repo := s.Sessions()

	account, client := idx.New(), idx.New()
	older := NewSession(account, client, base)
	newer := NewSession(account, client, base.Add(time.Second))
	require.NoError(t, repo.CreateSession(ctx, older))
	require.NoError(t, repo.CreateSession(ctx, newer))

	dup := NewSession(account, client, base)
	dup.AccessToken = older.AccessToken
	require.ErrorIs(t, repo.CreateSession(ctx, dup), store.ErrAlreadyExists)

	got, err := repo.GetSessionByAccessToken(ctx, older.AccessToken.Value)
	require.NoError(t, err)
	require.Equal(t, older, got)

	got, err = repo.GetSessionByRefreshToken(ctx, newer.RefreshToken.Value)
	require.NoError(t, err)
	require.Equal(t, newer.ID, got.ID)

	got, err = repo.GetSessionByAccountAndClient(ctx, account, client)
	require.NoError(t, err)
	require.Equal(t, newer.ID, got.ID)

	_, err = repo.GetSessionByAccountAndClient(ctx, account, idx.New())
	require.ErrorIs(t, err, store.ErrNotFound)

	system := NewSession(idx.Zero, client, base)
	system.CreationMethod = domain.MethodClientCredentials
	require.NoError(t, repo.CreateSession(ctx, system))
	got, err = repo.GetSessionByID(ctx, system.ID)
	require.NoError(t, err)
	require.True(t, got.IsSystem())

	require.NoError(t, repo.DeleteSession(ctx, older.ID))
	require.NoError(t, repo.DeleteSession(ctx, older.ID))
	_, err = repo.GetSessionByID(ctx, older.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testSessionsUpdateRevision(t *testing.T, s store.Store) {
	ctx := context.Background()
	repo := s.Sessions()

	sess := NewSession(idx.New(), idx.New(), base)
	require.NoError(t, repo.CreateSession(ctx, sess))

	now := base.Add(time.Hour)
	next := sess
	next.AccessToken = domain.GenerateToken(now, 2*time.Hour)
	next.RefreshToken = domain.GenerateToken(now, 8*time.Hour)

	updated, err := repo.UpdateSession(ctx, next)
	require.NoError(t, err)
	require.Equal(t, sess.Revision+1, updated.Revision)
	require.Equal(t, sess.ID, updated.ID)
	require.Equal(t, sess.CreatedAt, updated.CreatedAt)
	require.True(t, updated.AccessToken.Equal(next.AccessToken))

	// Same revision again: the first writer already moved it on.
	stale := sess
	stale.AccessToken = domain.GenerateToken(now, 2*time.Hour)
	stale.RefreshToken = domain.GenerateToken(now, 8*time.Hour)
	_, err = repo.UpdateSession(ctx, stale)
	require.ErrorIs(t, err, store.ErrConflict)

	_, err = repo.GetSessionByAccessToken(ctx, sess.AccessToken.Value)
	require.ErrorIs(t, err, store.ErrNotFound)

	missing := NewSession(idx.New(), idx.New(), base)
	_, err = repo.UpdateSession(ctx, missing)
	require.ErrorIs(t, err, store.ErrConflict)
}

func testSessionsDeleteOthers(t *testing.T, s store.Store) {
	ctx := context.Background()
	repo := s.Sessions()

	client, otherClient := idx.New(), idx.New()
	alice, bob := idx.New(), idx.New()

	keep := NewSession(alice, client, base)
	aliceOld := NewSession(alice, client, base)
	bobs := NewSession(bob, client, base)
	elsewhere := NewSession(alice, otherClient, base)
	for _, sess := range []domain.Session{keep, aliceOld, bobs, elsewhere} {
		require.NoError(t, repo.CreateSession(ctx, sess))
	}

	n, err := repo.DeleteOtherAccountSessions(ctx, alice, client, keep.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = repo.GetSessionByID(ctx, bobs.ID)
	require.NoError(t, err)

	n, err = repo.DeleteOtherSessions(ctx, client, keep.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	for _, id := range []idx.ID{keep.ID, elsewhere.ID} {
		_, err = repo.GetSessionByID(ctx, id)
		require.NoError(t, err)
	}
	_, err = repo.GetSessionByID(ctx, bobs.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testSessionsExpiredSweep(t *testing.T, s store.Store) {
	ctx := context.Background()
	repo := s.Sessions()

	old := NewSession(idx.New(), idx.New(), base)
	fresh := NewSession(idx.New(), idx.New(), base.Add(4*time.Hour))
	require.NoError(t, repo.CreateSession(ctx, old))
	require.NoError(t, repo.CreateSession(ctx, fresh))

	n, err := repo.DeleteExpiredSessions(ctx, base.Add(9*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = repo.GetSessionByID(ctx, fresh.ID)
	require.NoError(t, err)
}

func testWithTxRollback(t *testing.T, s store.Store) {
	ctx := context.Background()

	c := domain.Client{ID: idx.New(), Name: "game", CreatedAt: base}
	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Clients().CreateClient(ctx, c))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Clients().GetClientByID(ctx, c.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Clients().CreateClient(ctx, c)
	}))
	_, err = s.Clients().GetClientByID(ctx, c.ID)
	require.NoError(t, err)
}
