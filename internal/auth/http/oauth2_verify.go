package http

import (
	"net/http"

	"github.com/aussiebroadwan/ut4master/internal/auth/service"
	"github.com/aussiebroadwan/ut4master/pkg/authsdk"
	"github.com/aussiebroadwan/ut4master/pkg/httpx"
)

// VerifyHandler serves GET /account/api/oauth/verify.
type VerifyHandler struct {
	Authenticator *service.Authenticator
	Accounts      service.AccountDirectory
	Clock         service.Clock
}

// ServeHTTP godoc
//
//	@Summary		Verify an access token
//	@Description	Returns the session behind the presented bearer token. Game builds call it to check that a stored token is still live.
//	@Tags			OAuth2
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.VerifyResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_token"
//	@Failure		503	{object}	authsdk.ErrorResponse	"temporarily_unavailable"
//	@Router			/account/api/oauth/verify [get]
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.Authenticator.AuthenticateBearer(ctx, r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var displayName string
	if !sess.IsSystem() {
		account, found, err := h.Accounts.FindByID(ctx, sess.AccountID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if found {
			displayName = account.Username
		}
	}

	now := h.Clock.Now()
	httpx.WriteJSON(w, http.StatusOK, authsdk.VerifyResponse{
		Token:          sess.AccessToken.Value,
		SessionID:      sess.ID.String(),
		TokenType:      authsdk.TokenType,
		ClientID:       sess.ClientID.String(),
		InternalClient: true,
		ClientService:  authsdk.ClientService,
		AccountID:      sess.AccountID.String(),
		ExpiresIn:      secondsUntil(sess.AccessToken.ExpiresAt, now),
		ExpiresAt:      formatTime(sess.AccessToken.ExpiresAt),
		AuthMethod:     string(sess.CreationMethod),
		DisplayName:    displayName,
		App:            authsdk.App,
		InAppID:        sess.AccountID.String(),
	})
}
