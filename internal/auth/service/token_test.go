package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/internal/auth/service"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
)

func TestExchangePassword(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	acc := e.account(t, "Malcolm", "malcolm@example.com", "correct horse")
	c, secret := e.client(t, "game", false)

	t.Run("by username", func(t *testing.T) {
		g := e.login(t, c, secret, "malcolm", "correct horse")
		assert.Equal(t, acc.ID, g.Session.AccountID)
		assert.Equal(t, c.ID, g.Session.ClientID)
		assert.Equal(t, domain.MethodPassword, g.Session.CreationMethod)
		assert.Equal(t, "Malcolm", g.DisplayName)
		assert.Equal(t, base.Add(2*time.Hour), g.Session.AccessToken.ExpiresAt)
		assert.Equal(t, base.Add(8*time.Hour), g.Session.RefreshToken.ExpiresAt)
	})

	t.Run("by email", func(t *testing.T) {
		g := e.login(t, c, secret, "MALCOLM@example.com", "correct horse")
		assert.Equal(t, acc.ID, g.Session.AccountID)
	})

	t.Run("records last login", func(t *testing.T) {
		got, ok, err := e.accounts.FindByID(ctx, acc.ID)
		require.NoError(t, err)
		require.True(t, ok)
		require.NotNil(t, got.LastLoginAt)
		assert.Equal(t, base, *got.LastLoginAt)
	})

	tests := []struct {
		name    string
		req     service.GrantRequest
		wantErr error
	}{
		{
			name:    "wrong password",
			req:     service.GrantRequest{ClientID: c.ID.String(), ClientSecret: secret, Username: "malcolm", Password: "nope"},
			wantErr: service.ErrInvalidGrant,
		},
		{
			name:    "unknown user",
			req:     service.GrantRequest{ClientID: c.ID.String(), ClientSecret: secret, Username: "ghost", Password: "correct horse"},
			wantErr: service.ErrInvalidGrant,
		},
		{
			name:    "wrong client secret",
			req:     service.GrantRequest{ClientID: c.ID.String(), ClientSecret: "bad", Username: "malcolm", Password: "correct horse"},
			wantErr: service.ErrInvalidClient,
		},
		{
			name:    "unknown client",
			req:     service.GrantRequest{ClientID: idx.New().String(), ClientSecret: secret, Username: "malcolm", Password: "correct horse"},
			wantErr: service.ErrInvalidClient,
		},
		{
			name:    "malformed client id",
			req:     service.GrantRequest{ClientID: "not-an-id", Username: "malcolm", Password: "correct horse"},
			wantErr: service.ErrInvalidClient,
		},
		{
			name:    "missing password",
			req:     service.GrantRequest{ClientID: c.ID.String(), ClientSecret: secret, Username: "malcolm"},
			wantErr: service.ErrInvalidRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.GrantType = service.GrantPassword
			_, err := e.tokens.Exchange(ctx, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRepeatedBadPasswordsLeaveAccountUnchanged(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	acc := e.account(t, "malcolm", "", "correct horse")
	c, secret := e.client(t, "game", false)

	for range 3 {
		_, err := e.tokens.ExchangePassword(ctx, c.ID.String(), secret, "malcolm", "wrong")
		require.ErrorIs(t, err, service.ErrInvalidGrant)
	}

	got, _, err := e.accounts.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, acc, got)

	e.login(t, c, secret, "malcolm", "correct horse")
}

func TestExchangeCodeOnce(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	acc := e.account(t, "malcolm", "", "correct horse")
	c, secret := e.client(t, "game", false)

	code, err := e.codes.IssueCode(ctx, domain.CodeKindExchange, acc.ID, c.ID)
	require.NoError(t, err)

	g, err := e.tokens.ExchangeExchangeCode(ctx, c.ID.String(), secret, code.Token.Value)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, g.Session.AccountID)
	assert.Equal(t, c.ID, g.Session.ClientID)
	assert.Equal(t, domain.MethodExchange, g.Session.CreationMethod)

	_, err = e.tokens.ExchangeExchangeCode(ctx, c.ID.String(), secret, code.Token.Value)
	require.ErrorIs(t, err, service.ErrInvalidGrant)
}

func TestExchangeCodeWrongKind(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	acc := e.account(t, "malcolm", "", "correct horse")
	c, secret := e.client(t, "game", false)

	code, err := e.codes.IssueCode(ctx, domain.CodeKindExchange, acc.ID, c.ID)
	require.NoError(t, err)

	_, err = e.tokens.ExchangeAuthorizationCode(ctx, c.ID.String(), secret, code.Token.Value)
	require.ErrorIs(t, err, service.ErrInvalidGrant)

	// The wrong-kind attempt did not consume it.
	_, err = e.tokens.ExchangeExchangeCode(ctx, c.ID.String(), secret, code.Token.Value)
	require.NoError(t, err)
}

func TestExpiredCodeRejected(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	acc := e.account(t, "malcolm", "", "correct horse")
	c, secret := e.client(t, "game", false)

	code, err := e.codes.IssueCode(ctx, domain.CodeKindAuthorization, acc.ID, c.ID)
	require.NoError(t, err)

	e.advance(5 * time.Minute)
	_, err = e.tokens.ExchangeAuthorizationCode(ctx, c.ID.String(), secret, code.Token.Value)
	require.ErrorIs(t, err, service.ErrInvalidGrant)

	_, ok, err := e.sessions.GetSessionByAccountAndClient(ctx, acc.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, ok, "an expired code must not yield a session")
}

func TestConcurrentCodeExchangeHasOneWinner(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	acc := e.account(t, "malcolm", "", "correct horse")
	public, _, err := e.clients.CreateClient(ctx, service.NewClient{Name: "web"})
	require.NoError(t, err)

	code, err := e.codes.IssueCode(ctx, domain.CodeKindAuthorization, acc.ID, public.ID)
	require.NoError(t, err)

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.tokens.ExchangeAuthorizationCode(ctx, public.ID.String(), "", code.Token.Value)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		require.ErrorIs(t, err, service.ErrInvalidGrant)
	}
	assert.Equal(t, 1, winners)
}

func TestExchangeRefreshToken(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	e.account(t, "malcolm", "", "correct horse")
	c, secret := e.client(t, "game", false)
	first := e.login(t, c, secret, "malcolm", "correct horse")

	e.advance(3 * time.Hour)
	g, err := e.tokens.ExchangeRefreshToken(ctx, c.ID.String(), secret, first.Session.RefreshToken.Value)
	require.NoError(t, err)

	s := g.Session
	assert.Equal(t, first.Session.ID, s.ID)
	assert.Equal(t, first.Session.AccountID, s.AccountID)
	assert.Equal(t, first.Session.ClientID, s.ClientID)
	assert.Equal(t, first.Session.CreatedAt, s.CreatedAt)
	assert.Equal(t, domain.MethodPassword, s.CreationMethod)
	assert.False(t, s.AccessToken.Equal(first.Session.AccessToken))
	assert.False(t, s.RefreshToken.Equal(first.Session.RefreshToken))
	assert.Equal(t, base.Add(5*time.Hour), s.AccessToken.ExpiresAt)
	assert.Equal(t, "malcolm", g.DisplayName)

	// The old refresh token is spent.
	_, err = e.tokens.ExchangeRefreshToken(ctx, c.ID.String(), secret, first.Session.RefreshToken.Value)
	require.ErrorIs(t, err, service.ErrInvalidGrant)

	t.Run("other client cannot refresh", func(t *testing.T) {
		other, otherSecret := e.client(t, "web", false)
		_, err := e.tokens.ExchangeRefreshToken(ctx, other.ID.String(), otherSecret, s.RefreshToken.Value)
		require.ErrorIs(t, err, service.ErrInvalidGrant)
	})
}

func TestExpiredRefreshLeavesSessionUnmodified(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	e.account(t, "malcolm", "", "correct horse")
	c, secret := e.client(t, "game", false)
	g := e.login(t, c, secret, "malcolm", "correct horse")

	e.advance(8 * time.Hour)
	_, err := e.tokens.ExchangeRefreshToken(ctx, c.ID.String(), secret, g.Session.RefreshToken.Value)
	require.ErrorIs(t, err, service.ErrInvalidGrant)

	got, ok, err := e.sessions.GetSessionByID(ctx, g.Session.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, g.Session, got)
}

func TestConcurrentRefreshHasOneWinner(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	e.account(t, "malcolm", "", "correct horse")
	c, secret := e.client(t, "game", false)
	g := e.login(t, c, secret, "malcolm", "correct horse")

	const workers = 6
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.tokens.ExchangeRefreshToken(ctx, c.ID.String(), secret, g.Session.RefreshToken.Value)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners++
				return
			}
			assert.ErrorIs(t, err, service.ErrInvalidGrant)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}

func TestExchangeClientCredentials(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	c, secret := e.client(t, "dedicated-server", false)
	g, err := e.tokens.ExchangeClientCredentials(ctx, c.ID.String(), secret)
	require.NoError(t, err)
	assert.True(t, g.Session.IsSystem())
	assert.Equal(t, domain.MethodClientCredentials, g.Session.CreationMethod)
	assert.NotEmpty(t, g.Session.RefreshToken.Value)
	assert.Empty(t, g.DisplayName)

	g2, err := e.tokens.ExchangeRefreshToken(ctx, c.ID.String(), secret, g.Session.RefreshToken.Value)
	require.NoError(t, err)
	assert.Equal(t, g.Session.ID, g2.Session.ID)

	public, _, err := e.clients.CreateClient(ctx, service.NewClient{Name: "launcher"})
	require.NoError(t, err)
	_, err = e.tokens.ExchangeClientCredentials(ctx, public.ID.String(), "")
	require.ErrorIs(t, err, service.ErrInvalidClient)
}

func TestSingleSessionClientEvictsSiblings(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	e.account(t, "malcolm", "", "correct horse")
	e.account(t, "xan", "", "correct horse")
	single, singleSecret := e.client(t, "game", true)
	multi, multiSecret := e.client(t, "web", false)

	a := e.login(t, single, singleSecret, "malcolm", "correct horse")
	w1 := e.login(t, multi, multiSecret, "malcolm", "correct horse")
	w2 := e.login(t, multi, multiSecret, "xan", "correct horse")
	b := e.login(t, single, singleSecret, "xan", "correct horse")

	_, ok, err := e.sessions.GetSessionByID(ctx, a.Session.ID)
	require.NoError(t, err)
	assert.False(t, ok, "older session on single-session client must be evicted")

	for _, id := range []idx.ID{b.Session.ID, w1.Session.ID, w2.Session.ID} {
		_, ok, err := e.sessions.GetSessionByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestExchangeUnsupportedGrant(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	_, err := e.tokens.Exchange(context.Background(), service.GrantRequest{GrantType: "implicit"})
	require.ErrorIs(t, err, service.ErrUnsupportedGrantType)

	_, err = e.tokens.Exchange(context.Background(), service.GrantRequest{})
	require.ErrorIs(t, err, service.ErrInvalidRequest)
}

func TestStoreFailureIsTransient(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	e.account(t, "malcolm", "", "correct horse")
	c, secret := e.client(t, "game", false)
	require.NoError(t, e.store.Close())

	_, err := e.tokens.ExchangePassword(context.Background(), c.ID.String(), secret, "malcolm", "correct horse")
	require.ErrorIs(t, err, service.ErrTransient)
	assert.NotErrorIs(t, err, service.ErrInvalidClient)
	assert.NotErrorIs(t, err, service.ErrInvalidGrant)
}
