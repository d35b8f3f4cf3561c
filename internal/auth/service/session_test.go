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

func TestSessionLookupsReportAbsence(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	_, ok, err := e.sessions.GetSessionByID(ctx, idx.New())
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = e.sessions.GetSessionByAccessToken(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = e.sessions.GetSessionByAccessToken(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = e.sessions.GetSessionByAccountAndClient(ctx, idx.New(), idx.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionTokensAreUnique(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	account, client := idx.New(), idx.New()
	seen := make(map[string]struct{})
	for range 20 {
		s, err := e.sessions.CreateSession(ctx, account, client, domain.MethodPassword)
		require.NoError(t, err)
		for _, v := range []string{s.AccessToken.Value, s.RefreshToken.Value} {
			_, dup := seen[v]
			require.False(t, dup)
			seen[v] = struct{}{}
		}
	}
}

func TestUpdateSessionKeepsIdentity(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	s, err := e.sessions.CreateSession(ctx, idx.New(), idx.New(), domain.MethodPassword)
	require.NoError(t, err)

	tampered := s
	tampered.AccountID = idx.New()
	tampered.ClientID = idx.New()
	tampered.CreatedAt = base.Add(time.Hour)
	tampered.AccessToken = domain.GenerateToken(base, time.Hour)

	updated, err := e.sessions.UpdateSession(ctx, tampered)
	require.NoError(t, err)
	assert.Equal(t, s.ID, updated.ID)
	assert.Equal(t, s.AccountID, updated.AccountID)
	assert.Equal(t, s.ClientID, updated.ClientID)
	assert.Equal(t, s.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.AccessToken.Equal(tampered.AccessToken))

	_, err = e.sessions.UpdateSession(ctx, tampered)
	require.ErrorIs(t, err, service.ErrSessionChanged)
}

func TestRemoveSessionIsIdempotent(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	s, err := e.sessions.CreateSession(ctx, idx.New(), idx.New(), domain.MethodPassword)
	require.NoError(t, err)

	require.NoError(t, e.sessions.RemoveSession(ctx, s.ID))
	require.NoError(t, e.sessions.RemoveSession(ctx, s.ID))
	require.NoError(t, e.sessions.RemoveSession(ctx, idx.New()))
}

func TestRemoveOtherSessionsLeavesOne(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	client := idx.New()
	var keep domain.Session
	for i := range 5 {
		s, err := e.sessions.CreateSession(ctx, idx.New(), client, domain.MethodPassword)
		require.NoError(t, err)
		if i == 2 {
			keep = s
		}
	}
	elsewhere, err := e.sessions.CreateSession(ctx, idx.New(), idx.New(), domain.MethodPassword)
	require.NoError(t, err)

	n, err := e.sessions.RemoveOtherSessions(ctx, client, keep.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	for _, id := range []idx.ID{keep.ID, elsewhere.ID} {
		_, ok, err := e.sessions.GetSessionByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestRemoveOtherSessionsConcurrentWithCreate(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	client, account := idx.New(), idx.New()
	keep, err := e.sessions.CreateSession(ctx, account, client, domain.MethodPassword)
	require.NoError(t, err)
	for range 3 {
		_, err := e.sessions.CreateSession(ctx, account, client, domain.MethodPassword)
		require.NoError(t, err)
	}

	var (
		wg      sync.WaitGroup
		created domain.Session
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		s, err := e.sessions.CreateSession(ctx, account, client, domain.MethodPassword)
		assert.NoError(t, err)
		created = s
	}()
	go func() {
		defer wg.Done()
		_, err := e.sessions.RemoveOtherSessions(ctx, client, keep.ID)
		assert.NoError(t, err)
	}()
	wg.Wait()

	_, ok, err := e.sessions.GetSessionByID(ctx, keep.ID)
	require.NoError(t, err)
	assert.True(t, ok, "kept session must survive")

	// The new session either lost the race or survived alone beside keep.
	n, err := e.sessions.RemoveOtherSessions(ctx, client, keep.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, n, int64(1))
	if n == 0 {
		_, ok, err := e.sessions.GetSessionByID(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestKillSessions(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	alice, bob := idx.New(), idx.New()
	client := idx.New()

	mine, err := e.sessions.CreateSession(ctx, alice, client, domain.MethodPassword)
	require.NoError(t, err)
	myOther, err := e.sessions.CreateSession(ctx, alice, client, domain.MethodPassword)
	require.NoError(t, err)
	theirs, err := e.sessions.CreateSession(ctx, bob, client, domain.MethodPassword)
	require.NoError(t, err)

	caller := domain.SessionPrincipal(mine)

	require.ErrorIs(t, e.sessions.KillSession(ctx, caller, theirs.AccessToken.Value), service.ErrForbidden)
	require.NoError(t, e.sessions.KillSession(ctx, caller, "unknown"))
	require.ErrorIs(t, e.sessions.KillSession(ctx, domain.AnonymousPrincipal(), "unknown"), service.ErrUnauthenticated)

	n, err := e.sessions.KillOtherSessions(ctx, caller, service.KillOthers)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, ok, err := e.sessions.GetSessionByID(ctx, myOther.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = e.sessions.GetSessionByID(ctx, theirs.ID)
	require.NoError(t, err)
	assert.True(t, ok, "another account's session is out of reach")

	require.NoError(t, e.sessions.KillSession(ctx, caller, mine.AccessToken.Value))
	_, ok, err = e.sessions.GetSessionByID(ctx, mine.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSystemSessionKillOthersIsClientWide(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	client := idx.New()
	system, err := e.sessions.CreateSession(ctx, idx.Zero, client, domain.MethodClientCredentials)
	require.NoError(t, err)
	for range 3 {
		_, err := e.sessions.CreateSession(ctx, idx.New(), client, domain.MethodPassword)
		require.NoError(t, err)
	}

	n, err := e.sessions.KillOtherSessions(ctx, domain.SessionPrincipal(system), service.KillOthers)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestParseKillType(t *testing.T) {
	t.Parallel()

	k, err := service.ParseKillType("others_account_client")
	require.NoError(t, err)
	assert.Equal(t, service.KillOthersAccountClient, k)

	_, err = service.ParseKillType("ALL")
	require.ErrorIs(t, err, service.ErrInvalidRequest)
}
