package authsdk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// ErrNoRefreshToken is returned when the access token expired and the
// session has nothing to refresh it with.
var ErrNoRefreshToken = errors.New("authsdk: access token expired and no refresh token available")

// Session represents an authenticated session with automatic token refresh.
// Sessions are safe for concurrent use.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accountID    string
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// newSession creates a new authenticated session from a token response.
func newSession(client *SDKClient, tokenResp *TokenResponse) *Session {
	s := &Session{client: client}
	s.apply(tokenResp)
	return s
}

// apply stores a token response. Callers hold the write lock or own s.
func (s *Session) apply(tokenResp *TokenResponse) {
	s.accountID = tokenResp.AccountID
	s.accessToken = tokenResp.AccessToken
	s.refreshToken = tokenResp.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - refreshBuffer)
}

// getValidToken returns a valid access token, refreshing it if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	tokenResp, err := s.client.RefreshGrant(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	s.apply(tokenResp)

	return s.accessToken, nil
}

// Refresh forces a refresh_token grant regardless of expiry.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshToken == "" {
		return ErrNoRefreshToken
	}
	tokenResp, err := s.client.RefreshGrant(ctx, s.refreshToken)
	if err != nil {
		return err
	}
	s.apply(tokenResp)
	return nil
}

// AccountID returns the account the session acts for, empty for system sessions.
func (s *Session) AccountID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountID
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Token returns the session's tokens as an oauth2.Token, for use with
// oauth2.Config.TokenSource or oauth2.NewClient.
func (s *Session) Token() *oauth2.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &oauth2.Token{
		AccessToken:  s.accessToken,
		TokenType:    "Bearer",
		RefreshToken: s.refreshToken,
		Expiry:       s.expiresAt,
	}
}
