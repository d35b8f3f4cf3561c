package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/ut4master/internal/auth/service"
	"github.com/aussiebroadwan/ut4master/pkg/slogx"
)

// SessionsHandler serves the logout endpoints. Both are idempotent: killing
// an unknown or already killed session still returns 204 so the endpoint
// cannot be used to probe for live tokens.
type SessionsHandler struct {
	Authenticator *service.Authenticator
	Sessions      *service.SessionService
}

// HandleKill godoc
//
//	@Summary		Kill one session
//	@Description	Removes the session holding the given access token. Account sessions may kill sessions of their own account; system sessions may kill sessions of their own client.
//	@Tags			Sessions
//	@Security		BearerAuth
//	@Param			accessToken	path	string	true	"Access token of the session to kill"
//	@Success		204
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"access_denied"
//	@Router			/account/api/oauth/sessions/kill/{accessToken} [delete]
func (h *SessionsHandler) HandleKill(w http.ResponseWriter, r *http.Request) {
	p, ok := authenticateSession(w, r, h.Authenticator)
	if !ok {
		return
	}

	if err := h.Sessions.KillSession(r.Context(), p, r.PathValue("accessToken")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleKillOthers godoc
//
//	@Summary		Kill sibling sessions
//	@Description	Removes the caller's other sessions and keeps the calling one.
//	@Tags			Sessions
//	@Security		BearerAuth
//	@Param			killType	query	string	true	"Which sessions to remove"	Enums(OTHERS, OTHERS_ACCOUNT_CLIENT, OTHERS_ACCOUNT_CLIENT_SERVICE)
//	@Success		204
//	@Failure		400	{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_token"
//	@Router			/account/api/oauth/sessions/kill [delete]
func (h *SessionsHandler) HandleKillOthers(w http.ResponseWriter, r *http.Request) {
	p, ok := authenticateSession(w, r, h.Authenticator)
	if !ok {
		return
	}

	kind, err := service.ParseKillType(r.URL.Query().Get("killType"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	n, err := h.Sessions.KillOtherSessions(r.Context(), p, kind)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("sibling sessions killed",
		slog.String("kill_type", string(kind)),
		slog.String("session_id", p.SessionID.String()),
		slog.Int64("removed", n),
	)
	w.WriteHeader(http.StatusNoContent)
}
