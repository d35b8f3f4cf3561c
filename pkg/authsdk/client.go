package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Paths of the account API, relative to the base URL.
const (
	PathToken         = "/account/api/oauth/token"
	PathVerify        = "/account/api/oauth/verify"
	PathExchange      = "/account/api/oauth/exchange"
	PathAuthorize     = "/account/api/oauth/auth"
	PathKillSessions  = "/account/api/oauth/sessions/kill"
	PathCreateAccount = "/account/api/create/account"
	PathPublicAccount = "/account/api/public/account"
)

// refreshBuffer is how long before expiry a Session refreshes its access token.
const refreshBuffer = 30 * time.Second

// SDKClient is a client for the UT4 account service. It authenticates itself
// with HTTP Basic client credentials on every token request and creates
// authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	ClientID     string
	ClientSecret string // empty for public clients
}

// NewSDKClient creates a new account service client for the given client
// credentials.
func NewSDKClient(baseURL, clientID, clientSecret string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}
}

// OAuth2Config returns a golang.org/x/oauth2 configuration for this client.
// The token endpoint accepts the password and refresh_token grants from it
// directly, so callers that already speak x/oauth2 can use
// PasswordCredentialsToken and TokenSource.
func (c *SDKClient) OAuth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.url(PathToken),
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// AuthenticateWithPassword logs an account in. username may also be the
// account's email address.
func (c *SDKClient) AuthenticateWithPassword(ctx context.Context, username, password string) (*Session, error) {
	tokenResp, err := c.PasswordGrant(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, tokenResp), nil
}

// AuthenticateWithExchangeCode redeems an exchange code issued to another
// client of the same account.
func (c *SDKClient) AuthenticateWithExchangeCode(ctx context.Context, code string) (*Session, error) {
	tokenResp, err := c.ExchangeCodeGrant(ctx, code)
	if err != nil {
		return nil, err
	}
	return newSession(c, tokenResp), nil
}

// AuthenticateWithClientCredentials creates a system session with no account
// behind it. The client must be confidential.
func (c *SDKClient) AuthenticateWithClientCredentials(ctx context.Context) (*Session, error) {
	tokenResp, err := c.ClientCredentialsGrant(ctx)
	if err != nil {
		return nil, err
	}
	return newSession(c, tokenResp), nil
}

// AuthenticateWithRefreshToken resumes a session from a stored refresh token.
func (c *SDKClient) AuthenticateWithRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	tokenResp, err := c.RefreshGrant(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return newSession(c, tokenResp), nil
}

// NewSessionFromTokens creates a session from tokens obtained elsewhere. The
// session still refreshes itself once the access token is close to expiry.
func (c *SDKClient) NewSessionFromTokens(accountID, accessToken, refreshToken string, expiresIn int) *Session {
	return &Session{
		client:       c,
		accountID:    accountID,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		expiresAt:    time.Now().Add(time.Duration(expiresIn)*time.Second - refreshBuffer),
	}
}
