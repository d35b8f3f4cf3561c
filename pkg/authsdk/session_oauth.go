package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Verify returns the server's view of this session.
func (s *Session) Verify(ctx context.Context) (*VerifyResponse, error) {
	var out VerifyResponse
	if err := s.send(ctx, request{method: http.MethodGet, path: PathVerify}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExchangeCode issues a single-use exchange code another client of the same
// account can redeem with ExchangeCodeGrant.
func (s *Session) ExchangeCode(ctx context.Context) (*ExchangeCodeResponse, error) {
	var out ExchangeCodeResponse
	if err := s.send(ctx, request{method: http.MethodGet, path: PathExchange}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuthorizationCode issues a single-use authorization code for this account.
func (s *Session) AuthorizationCode(ctx context.Context) (*AuthorizationCodeResponse, error) {
	var out AuthorizationCodeResponse
	if err := s.send(ctx, request{method: http.MethodGet, path: PathAuthorize}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Kill ends this session on the server. It uses the current access token as
// is, so an expired session is not refreshed just to be killed. The session
// must not be used afterwards.
func (s *Session) Kill(ctx context.Context) error {
	token := s.AccessToken()
	return s.client.send(ctx, request{
		method: http.MethodDelete,
		path:   PathKillSessions + "/" + url.PathEscape(token),
		bearer: token,
		want:   http.StatusNoContent,
	}, nil)
}

// KillOthers ends sibling sessions. killType is one of OTHERS,
// OTHERS_ACCOUNT_CLIENT or OTHERS_ACCOUNT_CLIENT_SERVICE.
func (s *Session) KillOthers(ctx context.Context, killType string) error {
	return s.send(ctx, request{
		method: http.MethodDelete,
		path:   PathKillSessions,
		query:  url.Values{"killType": {killType}},
		want:   http.StatusNoContent,
	}, nil)
}
