package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// PasswordGrant requests tokens with the password grant.
func (c *SDKClient) PasswordGrant(ctx context.Context, username, password string) (*TokenResponse, error) {
	return c.requestToken(ctx, url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	})
}

// ExchangeCodeGrant redeems an exchange code for tokens.
func (c *SDKClient) ExchangeCodeGrant(ctx context.Context, code string) (*TokenResponse, error) {
	return c.requestToken(ctx, url.Values{
		"grant_type":    {"exchange_code"},
		"exchange_code": {code},
	})
}

// AuthorizationCodeGrant redeems an authorization code for tokens.
func (c *SDKClient) AuthorizationCodeGrant(ctx context.Context, code string) (*TokenResponse, error) {
	return c.requestToken(ctx, url.Values{
		"grant_type": {"authorization_code"},
		"code":       {code},
	})
}

// RefreshGrant requests new tokens using a refresh token. The session keeps
// its id; both tokens are replaced.
func (c *SDKClient) RefreshGrant(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	return c.requestToken(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
}

// ClientCredentialsGrant requests tokens for the client itself.
func (c *SDKClient) ClientCredentialsGrant(ctx context.Context) (*TokenResponse, error) {
	return c.requestToken(ctx, url.Values{
		"grant_type": {"client_credentials"},
	})
}

func (c *SDKClient) requestToken(ctx context.Context, form url.Values) (*TokenResponse, error) {
	var out TokenResponse
	err := c.send(ctx, request{method: http.MethodPost, path: PathToken, form: form, basic: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
