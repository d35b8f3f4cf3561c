package http

import (
	"net/http"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/internal/auth/service"
	"github.com/aussiebroadwan/ut4master/pkg/authsdk"
	"github.com/aussiebroadwan/ut4master/pkg/httpx"
)

// CodeHandler issues single-use codes for the calling account session.
// System sessions have no account to hand over and are refused.
type CodeHandler struct {
	Authenticator *service.Authenticator
	Codes         *service.CodeService
	Clock         service.Clock
}

func (h *CodeHandler) issue(w http.ResponseWriter, r *http.Request, kind domain.CodeKind) (domain.Principal, domain.AuthorizationCode, bool) {
	p, ok := authenticateSession(w, r, h.Authenticator)
	if !ok {
		return domain.Principal{}, domain.AuthorizationCode{}, false
	}
	if !p.HasAccount() {
		writeError(w, r, service.ErrForbidden)
		return domain.Principal{}, domain.AuthorizationCode{}, false
	}

	code, err := h.Codes.IssueCode(r.Context(), kind, p.AccountID, p.ClientID)
	if err != nil {
		writeError(w, r, err)
		return domain.Principal{}, domain.AuthorizationCode{}, false
	}
	return p, code, true
}

// HandleExchange godoc
//
//	@Summary		Issue an exchange code
//	@Description	Issues a single-use exchange code for the caller's account. Another client redeems it with grant_type=exchange_code.
//	@Tags			OAuth2
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ExchangeCodeResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"system sessions cannot issue codes"
//	@Router			/account/api/oauth/exchange [get]
func (h *CodeHandler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	_, code, ok := h.issue(w, r, domain.CodeKindExchange)
	if !ok {
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ExchangeCodeResponse{
		ExpiresInSeconds: secondsUntil(code.Token.ExpiresAt, h.Clock.Now()),
		Code:             code.Token.Value,
		CreatingClientID: code.ClientID.String(),
	})
}

// HandleAuthorize godoc
//
//	@Summary		Issue an authorization code
//	@Description	Issues a single-use authorization code for the caller's account, redeemed with grant_type=authorization_code.
//	@Tags			OAuth2
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.AuthorizationCodeResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"system sessions cannot issue codes"
//	@Router			/account/api/oauth/auth [get]
func (h *CodeHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	p, code, ok := h.issue(w, r, domain.CodeKindAuthorization)
	if !ok {
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.AuthorizationCodeResponse{
		AuthorizationCode: code.Token.Value,
		SessionID:         p.SessionID.String(),
	})
}
