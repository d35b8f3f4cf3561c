package http_test

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/aussiebroadwan/ut4master/pkg/authsdk"
)

const password = "correct-horse"

func basic(id, secret string) http.Header {
	return http.Header{"Authorization": {"Basic " + base64.StdEncoding.EncodeToString([]byte(id+":"+secret))}}
}

func TestTokenPasswordGrantResponse(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	sdk, c := s.sdk(t, "game")
	a := s.account(t, "player1", "player1@example.com", password)

	resp, body := s.do(t, http.MethodPost, authsdk.PathToken, url.Values{
		"grant_type": {"password"},
		"username":   {"player1"},
		"password":   {password},
	}, basic(sdk.ClientID, sdk.ClientSecret))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "no-cache", resp.Header.Get("Pragma"))

	var tok authsdk.TokenResponse
	require.NoError(t, json.Unmarshal([]byte(body), &tok))
	assert.Len(t, tok.AccessToken, 43)
	assert.Len(t, tok.RefreshToken, 43)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.Equal(t, 7200, tok.ExpiresIn)
	assert.Equal(t, "2024-03-01T12:00:00.000Z", tok.ExpiresAt)
	assert.Equal(t, 28800, tok.RefreshExpires)
	assert.Equal(t, "2024-03-01T18:00:00.000Z", tok.RefreshExpiresAt)
	assert.Equal(t, a.ID.String(), tok.AccountID)
	assert.Equal(t, c.ID.String(), tok.ClientID)
	assert.True(t, tok.InternalClient)
	assert.Equal(t, "ut", tok.ClientService)
	assert.Equal(t, "ut", tok.App)
	assert.Equal(t, "player1", tok.DisplayName)
}

func TestTokenEndpointErrors(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	sdk, _ := s.sdk(t, "game")
	s.account(t, "player1", "", password)

	good := basic(sdk.ClientID, sdk.ClientSecret)

	tests := []struct {
		name      string
		form      url.Values
		header    http.Header
		status    int
		code      string
		challenge string
	}{
		{
			name:   "wrong password",
			form:   url.Values{"grant_type": {"password"}, "username": {"player1"}, "password": {"nope-nope"}},
			header: good,
			status: http.StatusBadRequest,
			code:   authsdk.ErrorCodeInvalidGrant,
		},
		{
			name:   "unknown user",
			form:   url.Values{"grant_type": {"password"}, "username": {"ghost"}, "password": {password}},
			header: good,
			status: http.StatusBadRequest,
			code:   authsdk.ErrorCodeInvalidGrant,
		},
		{
			name:      "wrong client secret",
			form:      url.Values{"grant_type": {"password"}, "username": {"player1"}, "password": {password}},
			header:    basic(sdk.ClientID, "wrong"),
			status:    http.StatusUnauthorized,
			code:      authsdk.ErrorCodeInvalidClient,
			challenge: "Basic",
		},
		{
			name:      "malformed basic header",
			form:      url.Values{"grant_type": {"password"}, "username": {"player1"}, "password": {password}},
			header:    http.Header{"Authorization": {"Basic !!!"}},
			status:    http.StatusUnauthorized,
			code:      authsdk.ErrorCodeInvalidClient,
			challenge: "Basic",
		},
		{
			name:   "unsupported grant type",
			form:   url.Values{"grant_type": {"implicit"}},
			header: good,
			status: http.StatusBadRequest,
			code:   authsdk.ErrorCodeUnsupportedGrantType,
		},
		{
			name:   "missing grant type",
			form:   url.Values{"username": {"player1"}},
			header: good,
			status: http.StatusBadRequest,
			code:   authsdk.ErrorCodeInvalidRequest,
		},
		{
			name:   "unknown refresh token",
			form:   url.Values{"grant_type": {"refresh_token"}, "refresh_token": {"nope"}},
			header: good,
			status: http.StatusBadRequest,
			code:   authsdk.ErrorCodeInvalidGrant,
		},
		{
			name:   "unknown exchange code",
			form:   url.Values{"grant_type": {"exchange_code"}, "exchange_code": {"nope"}},
			header: good,
			status: http.StatusBadRequest,
			code:   authsdk.ErrorCodeInvalidGrant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := s.do(t, http.MethodPost, authsdk.PathToken, tt.form, tt.header)
			require.Equal(t, tt.status, resp.StatusCode, body)

			var e authsdk.ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(body), &e))
			assert.Equal(t, tt.code, e.Error)
			if tt.challenge != "" {
				assert.Contains(t, resp.Header.Get("WWW-Authenticate"), tt.challenge)
			}
		})
	}
}

func TestTokenRejectsJSONBody(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, s.URL+authsdk.PathToken, nil)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTokenFormClientCredentials(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	sdk, _ := s.sdk(t, "game")
	s.account(t, "player1", "", password)

	resp, body := s.do(t, http.MethodPost, authsdk.PathToken, url.Values{
		"grant_type":    {"password"},
		"username":      {"player1"},
		"password":      {password},
		"client_id":     {sdk.ClientID},
		"client_secret": {sdk.ClientSecret},
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
}

func TestTokenClientCredentialsGrant(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	sdk, c := s.sdk(t, "dedicated-server")

	tok, err := sdk.ClientCredentialsGrant(t.Context())
	require.NoError(t, err)
	assert.Empty(t, tok.AccountID)
	assert.Empty(t, tok.DisplayName)
	assert.Equal(t, c.ID.String(), tok.ClientID)
	assert.NotEmpty(t, tok.RefreshToken)

	// System sessions have no account to hand over.
	session := sdk.NewSessionFromTokens("", tok.AccessToken, tok.RefreshToken, tok.ExpiresIn)
	_, err = session.ExchangeCode(t.Context())
	require.ErrorIs(t, err, authsdk.ErrAccessDenied)
}

func TestTokenRefreshKeepsSession(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	sdk, _ := s.sdk(t, "game")
	s.account(t, "player1", "", password)

	session, err := sdk.AuthenticateWithPassword(t.Context(), "player1", password)
	require.NoError(t, err)
	before, err := session.Verify(t.Context())
	require.NoError(t, err)
	oldAccess, oldRefresh := session.AccessToken(), session.RefreshToken()

	require.NoError(t, session.Refresh(t.Context()))
	require.NotEqual(t, oldAccess, session.AccessToken())
	require.NotEqual(t, oldRefresh, session.RefreshToken())

	after, err := session.Verify(t.Context())
	require.NoError(t, err)
	assert.Equal(t, before.SessionID, after.SessionID)
	assert.Equal(t, "password", after.AuthMethod)

	// Both old tokens are dead.
	resp, _ := s.do(t, http.MethodGet, authsdk.PathVerify, nil, bearer(oldAccess))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_, err = sdk.RefreshGrant(t.Context(), oldRefresh)
	require.ErrorIs(t, err, authsdk.ErrInvalidGrant)
}

func TestTokenRefreshExpired(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	sdk, _ := s.sdk(t, "game")
	s.account(t, "player1", "", password)

	tok, err := sdk.PasswordGrant(t.Context(), "player1", password)
	require.NoError(t, err)

	s.advance(8 * time.Hour)
	_, err = sdk.RefreshGrant(t.Context(), tok.RefreshToken)
	require.ErrorIs(t, err, authsdk.ErrInvalidGrant)
}

func TestTokenRefreshForeignClient(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	game, _ := s.sdk(t, "game")
	web, _ := s.sdk(t, "web")
	s.account(t, "player1", "", password)

	tok, err := game.PasswordGrant(t.Context(), "player1", password)
	require.NoError(t, err)

	_, err = web.RefreshGrant(t.Context(), tok.RefreshToken)
	require.ErrorIs(t, err, authsdk.ErrInvalidGrant)
}

func TestTokenConcurrentCodeRedemption(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	web, _ := s.sdk(t, "web")
	game, _ := s.sdk(t, "game")
	s.account(t, "player1", "", password)

	session, err := web.AuthenticateWithPassword(t.Context(), "player1", password)
	require.NoError(t, err)
	code, err := session.ExchangeCode(t.Context())
	require.NoError(t, err)

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		rejected int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := game.ExchangeCodeGrant(t.Context(), code.Code)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, authsdk.ErrInvalidGrant):
				rejected++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
	require.Equal(t, workers-1, rejected)
}

func TestOAuth2ConfigPasswordAndRefresh(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	sdk, _ := s.sdk(t, "game")
	s.account(t, "player1", "", password)

	cfg := sdk.OAuth2Config()
	tok, err := cfg.PasswordCredentialsToken(t.Context(), "player1", password)
	require.NoError(t, err)
	require.NotEmpty(t, tok.AccessToken)
	require.NotEmpty(t, tok.RefreshToken)

	resp, err := cfg.Client(t.Context(), tok).Get(s.URL + authsdk.PathVerify)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// A token source with only a refresh token runs the refresh_token grant.
	refreshed, err := cfg.TokenSource(t.Context(), &oauth2.Token{RefreshToken: tok.RefreshToken}).Token()
	require.NoError(t, err)
	require.NotEqual(t, tok.AccessToken, refreshed.AccessToken)
	require.NotEqual(t, tok.RefreshToken, refreshed.RefreshToken)
}
