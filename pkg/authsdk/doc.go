/*
Package authsdk provides a client SDK for the UT4 master server account service.

# Overview

The account service emulates the OAuth2 token service game builds talk to.
Tokens are opaque random strings; a session is an (account, client) pair with
an access token and a refresh token.

The package is organized around two types:

  - SDKClient: holds the calling client's credentials, performs grants and
    anonymous operations, and creates Sessions
  - Session: performs bearer-authenticated operations and refreshes its
    access token automatically

Every token request authenticates the client with HTTP Basic credentials:

	client := authsdk.NewSDKClient("https://master.example.com", clientID, clientSecret)

	// Register and log in
	err := client.CreateAccount(ctx, authsdk.CreateAccountRequest{Username: "player1", Password: "hunter22"})
	session, err := client.AuthenticateWithPassword(ctx, "player1", "hunter22")

# Handing a login to another client

A logged-in client can issue an exchange code that a different client of the
same account redeems once, within its lifetime:

	code, err := webSession.ExchangeCode(ctx)
	gameSession, err := game.AuthenticateWithExchangeCode(ctx, code.Code)

# Automatic Token Refresh

Session methods call getValidToken, which refreshes the access token 30
seconds before it expires. A refresh keeps the session id and replaces both
tokens; the old refresh token stops working.

# golang.org/x/oauth2

OAuth2Config returns an oauth2.Config pointing at the token endpoint, so the
password and refresh_token grants also work through x/oauth2:

	cfg := client.OAuth2Config()
	tok, err := cfg.PasswordCredentialsToken(ctx, "player1", "hunter22")
	httpClient := cfg.Client(ctx, tok)

# Error Handling

Non-2xx responses are returned as *OAuth2Error. Compare with errors.Is against
the predefined errors:

	_, err := client.AuthenticateWithPassword(ctx, "player1", "wrong")
	if errors.Is(err, authsdk.ErrInvalidGrant) {
		// wrong username or password
	}

ErrTemporarilyUnavailable means the server could not reach its store; the
request may be retried.
*/
package authsdk
