package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/ut4master/internal/auth/service"
	"github.com/aussiebroadwan/ut4master/pkg/authsdk"
	"github.com/aussiebroadwan/ut4master/pkg/httpx"
)

// TokenHandler serves POST /account/api/oauth/token.
// Accepts application/x-www-form-urlencoded per the RFC 6749 framework.
type TokenHandler struct {
	TokenService *service.TokenService
	Clock        service.Clock
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Endpoint
//	@Description	Exchanges a credential for a session. The client authenticates with HTTP Basic credentials, or with client_id and client_secret form fields when no Basic header is sent.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Security		BasicAuth
//	@Param			grant_type		formData	string					true	"Grant type"	Enums(password, authorization_code, exchange_code, refresh_token, client_credentials)
//	@Param			username		formData	string					false	"Username or email (password grant)"
//	@Param			password		formData	string					false	"Password (password grant)"
//	@Param			code			formData	string					false	"Authorization code (authorization_code grant)"
//	@Param			exchange_code	formData	string					false	"Exchange code (exchange_code grant)"
//	@Param			refresh_token	formData	string					false	"Refresh token (refresh_token grant)"
//	@Param			client_id		formData	string					false	"Client id when no Basic header is sent"
//	@Param			client_secret	formData	string					false	"Client secret when no Basic header is sent"
//	@Success		200				{object}	authsdk.TokenResponse
//	@Failure		400				{object}	authsdk.ErrorResponse	"invalid_request, invalid_grant, unsupported_grant_type"
//	@Failure		401				{object}	authsdk.ErrorResponse	"invalid_client"
//	@Failure		429				{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		503				{object}	authsdk.ErrorResponse	"temporarily_unavailable"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Header			200				{string}	Pragma					"no-cache"
//	@Router			/account/api/oauth/token [post]
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 1. Ensure the right content-type
	if !httpx.IsFormContentType(r.Header.Get("Content-Type")) {
		authsdk.ErrInvalidContentType.WriteError(w)
		return
	}

	// 2. Parse the form body
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	// 3. Resolve client credentials. A Basic header wins over form fields.
	clientID := strings.TrimSpace(r.PostForm.Get("client_id"))
	clientSecret := r.PostForm.Get("client_secret")
	if authz := httpx.ParseAuthorization(r.Header.Get("Authorization")); authz.Scheme == httpx.SchemeBasic {
		id, secret, err := authz.BasicCredentials()
		if err != nil {
			writeError(w, r, service.ErrInvalidClient)
			return
		}
		clientID, clientSecret = id, secret
	}

	// 4. Run the grant
	grant, err := h.TokenService.Exchange(r.Context(), service.GrantRequest{
		GrantType:    service.GrantType(strings.TrimSpace(r.PostForm.Get("grant_type"))),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Username:     strings.TrimSpace(r.PostForm.Get("username")),
		Password:     r.PostForm.Get("password"),
		Code:         strings.TrimSpace(r.PostForm.Get("code")),
		ExchangeCode: strings.TrimSpace(r.PostForm.Get("exchange_code")),
		RefreshToken: strings.TrimSpace(r.PostForm.Get("refresh_token")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(grant, h.Clock.Now()))
}

func newTokenResponse(g service.Grant, now time.Time) authsdk.TokenResponse {
	s := g.Session
	return authsdk.TokenResponse{
		AccessToken:      s.AccessToken.Value,
		ExpiresIn:        secondsUntil(s.AccessToken.ExpiresAt, now),
		ExpiresAt:        formatTime(s.AccessToken.ExpiresAt),
		TokenType:        authsdk.TokenType,
		RefreshToken:     s.RefreshToken.Value,
		RefreshExpires:   secondsUntil(s.RefreshToken.ExpiresAt, now),
		RefreshExpiresAt: formatTime(s.RefreshToken.ExpiresAt),
		AccountID:        s.AccountID.String(),
		ClientID:         s.ClientID.String(),
		InternalClient:   true,
		ClientService:    authsdk.ClientService,
		DisplayName:      g.DisplayName,
		App:              authsdk.App,
		InAppID:          s.AccountID.String(),
	}
}
