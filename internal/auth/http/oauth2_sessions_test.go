package http_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/ut4master/pkg/authsdk"
)

func TestVerify(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	sdk, c := s.sdk(t, "game")
	a := s.account(t, "player1", "", password)

	session, err := sdk.AuthenticateWithPassword(t.Context(), "player1", password)
	require.NoError(t, err)

	v, err := session.Verify(t.Context())
	require.NoError(t, err)
	assert.Equal(t, session.AccessToken(), v.Token)
	assert.Equal(t, a.ID.String(), v.AccountID)
	assert.Equal(t, c.ID.String(), v.ClientID)
	assert.Equal(t, "player1", v.DisplayName)
	assert.Equal(t, "bearer", v.TokenType)
	assert.Equal(t, 7200, v.ExpiresIn)
	assert.NotEmpty(t, v.SessionID)

	t.Run("anonymous", func(t *testing.T) {
		resp, _ := s.do(t, http.MethodGet, authsdk.PathVerify, nil, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("WWW-Authenticate"), `error="invalid_token"`)
	})

	t.Run("client credentials are not a session", func(t *testing.T) {
		resp, _ := s.do(t, http.MethodGet, authsdk.PathVerify, nil, basic(sdk.ClientID, sdk.ClientSecret))
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("bearer failure does not fall back to basic", func(t *testing.T) {
		resp, _ := s.do(t, http.MethodGet, authsdk.PathVerify, nil, bearer("not-a-token"))
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestVerifyExpiredAccessToken(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	sdk, _ := s.sdk(t, "game")
	s.account(t, "player1", "", password)

	session, err := sdk.AuthenticateWithPassword(t.Context(), "player1", password)
	require.NoError(t, err)

	s.advance(2 * time.Hour)
	_, err = session.Verify(t.Context())
	require.ErrorIs(t, err, authsdk.ErrInvalidToken)

	// The refresh token outlives the access token.
	require.NoError(t, session.Refresh(t.Context()))
	_, err = session.Verify(t.Context())
	require.NoError(t, err)
}

func TestExchangeCodeHandsLoginToAnotherClient(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	web, webClient := s.sdk(t, "web")
	game, gameClient := s.sdk(t, "game")
	a := s.account(t, "player1", "", password)

	webSession, err := web.AuthenticateWithPassword(t.Context(), "player1", password)
	require.NoError(t, err)

	code, err := webSession.ExchangeCode(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 300, code.ExpiresInSeconds)
	assert.Equal(t, webClient.ID.String(), code.CreatingClientID)

	gameSession, err := game.AuthenticateWithExchangeCode(t.Context(), code.Code)
	require.NoError(t, err)
	assert.Equal(t, a.ID.String(), gameSession.AccountID())

	v, err := gameSession.Verify(t.Context())
	require.NoError(t, err)
	assert.Equal(t, gameClient.ID.String(), v.ClientID)
	assert.Equal(t, "exchange", v.AuthMethod)

	_, err = game.AuthenticateWithExchangeCode(t.Context(), code.Code)
	require.ErrorIs(t, err, authsdk.ErrInvalidGrant)
}

func TestExchangeCodeExpires(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	web, _ := s.sdk(t, "web")
	game, _ := s.sdk(t, "game")
	s.account(t, "player1", "", password)

	webSession, err := web.AuthenticateWithPassword(t.Context(), "player1", password)
	require.NoError(t, err)
	code, err := webSession.ExchangeCode(t.Context())
	require.NoError(t, err)

	s.advance(5 * time.Minute)
	_, err = game.ExchangeCodeGrant(t.Context(), code.Code)
	require.ErrorIs(t, err, authsdk.ErrInvalidGrant)
}

func TestAuthorizationCode(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	sdk, _ := s.sdk(t, "game")
	s.account(t, "player1", "", password)

	session, err := sdk.AuthenticateWithPassword(t.Context(), "player1", password)
	require.NoError(t, err)
	v, err := session.Verify(t.Context())
	require.NoError(t, err)

	code, err := session.AuthorizationCode(t.Context())
	require.NoError(t, err)
	assert.Equal(t, v.SessionID, code.SessionID)

	// Codes are kind-scoped: an authorization code is not an exchange code.
	_, err = sdk.ExchangeCodeGrant(t.Context(), code.AuthorizationCode)
	require.ErrorIs(t, err, authsdk.ErrInvalidGrant)

	// The failed attempt above left the code in place.
	tok, err := sdk.AuthorizationCodeGrant(t.Context(), code.AuthorizationCode)
	require.NoError(t, err)
	assert.Equal(t, v.AccountID, tok.AccountID)
}

func TestKillSession(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	sdk, _ := s.sdk(t, "game")
	s.account(t, "player1", "", password)
	s.account(t, "player2", "", password)

	first, err := sdk.AuthenticateWithPassword(t.Context(), "player1", password)
	require.NoError(t, err)
	second, err := sdk.AuthenticateWithPassword(t.Context(), "player1", password)
	require.NoError(t, err)
	other, err := sdk.AuthenticateWithPassword(t.Context(), "player2", password)
	require.NoError(t, err)

	// Another account's session is off limits.
	resp, body := s.do(t, http.MethodDelete, authsdk.PathKillSessions+"/"+url.PathEscape(second.AccessToken()), nil,
		bearer(other.AccessToken()))
	require.Equal(t, http.StatusForbidden, resp.StatusCode, body)

	// Killing a sibling of the same account works and is idempotent.
	for range 2 {
		resp, body = s.do(t, http.MethodDelete, authsdk.PathKillSessions+"/"+url.PathEscape(second.AccessToken()), nil,
			bearer(first.AccessToken()))
		require.Equal(t, http.StatusNoContent, resp.StatusCode, body)
	}
	_, err = second.Verify(t.Context())
	require.ErrorIs(t, err, authsdk.ErrInvalidToken)

	require.NoError(t, first.Kill(t.Context()))
	_, err = first.Verify(t.Context())
	require.ErrorIs(t, err, authsdk.ErrInvalidToken)

	_, err = other.Verify(t.Context())
	require.NoError(t, err)
}

func TestKillOtherSessions(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	game, _ := s.sdk(t, "game")
	web, _ := s.sdk(t, "web")
	s.account(t, "player1", "", password)
	s.account(t, "player2", "", password)

	keep, err := game.AuthenticateWithPassword(t.Context(), "player1", password)
	require.NoError(t, err)
	sibling, err := game.AuthenticateWithPassword(t.Context(), "player1", password)
	require.NoError(t, err)
	otherClient, err := web.AuthenticateWithPassword(t.Context(), "player1", password)
	require.NoError(t, err)
	otherAccount, err := game.AuthenticateWithPassword(t.Context(), "player2", password)
	require.NoError(t, err)

	require.NoError(t, keep.KillOthers(t.Context(), "OTHERS_ACCOUNT_CLIENT"))

	_, err = keep.Verify(t.Context())
	require.NoError(t, err)
	_, err = sibling.Verify(t.Context())
	require.ErrorIs(t, err, authsdk.ErrInvalidToken)
	_, err = otherClient.Verify(t.Context())
	require.NoError(t, err)
	_, err = otherAccount.Verify(t.Context())
	require.NoError(t, err)

	err = keep.KillOthers(t.Context(), "EVERYONE")
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)
}

func TestKillOthersFromSystemSessionClearsClient(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	game, _ := s.sdk(t, "game")
	s.account(t, "player1", "", password)

	player, err := game.AuthenticateWithPassword(t.Context(), "player1", password)
	require.NoError(t, err)
	system, err := game.AuthenticateWithClientCredentials(t.Context())
	require.NoError(t, err)

	require.NoError(t, system.KillOthers(t.Context(), "OTHERS"))

	_, err = player.Verify(t.Context())
	require.ErrorIs(t, err, authsdk.ErrInvalidToken)
	_, err = system.Verify(t.Context())
	require.NoError(t, err)
}
