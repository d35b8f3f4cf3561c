package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// GetAccount returns the public view of one account.
func (s *Session) GetAccount(ctx context.Context, accountID string) (*AccountResponse, error) {
	var out AccountResponse
	r := request{method: http.MethodGet, path: PathPublicAccount + "/" + url.PathEscape(accountID)}
	if err := s.send(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAccounts returns summaries for the given ids. Unknown ids are left out.
func (s *Session) ListAccounts(ctx context.Context, accountIDs ...string) ([]AccountSummary, error) {
	q := url.Values{}
	if len(accountIDs) > 0 {
		q["accountId"] = accountIDs
	}

	var out []AccountSummary
	if err := s.send(ctx, request{method: http.MethodGet, path: PathPublicAccount, query: q}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAccount registers a new account. It needs no session.
func (c *SDKClient) CreateAccount(ctx context.Context, req CreateAccountRequest) error {
	form := url.Values{
		"username": {req.Username},
		"password": {req.Password},
	}
	if req.Email != "" {
		form.Set("email", req.Email)
	}
	return c.send(ctx, request{
		method: http.MethodPost,
		path:   PathCreateAccount,
		form:   form,
		want:   http.StatusNoContent,
	}, nil)
}
