package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/internal/auth/service"
	"github.com/aussiebroadwan/ut4master/pkg/authsdk"
	"github.com/aussiebroadwan/ut4master/pkg/httpx"
	"github.com/aussiebroadwan/ut4master/pkg/slogx"
)

// retryAfter is sent with 503 responses when the store is unreachable.
const retryAfter = 5 * time.Second

// timeLayout is RFC3339 with milliseconds, the format game builds parse.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// secondsUntil rounds down and never goes negative.
func secondsUntil(t, now time.Time) int {
	return max(int(t.Sub(now)/time.Second), 0)
}

// writeError maps a service error onto its OAuth2 response. Anything the
// services do not name is logged and reported as server_error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	switch {
	case errors.Is(err, service.ErrTransient):
		slogx.LogError(log, "store unavailable", err)
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		authsdk.ErrTemporarilyUnavailable.WriteError(w)
	case errors.Is(err, service.ErrInvalidClient):
		httpx.SetBasicChallenge(w)
		authsdk.ErrInvalidClient.WriteError(w)
	case errors.Is(err, service.ErrInvalidGrant):
		authsdk.ErrInvalidGrant.WriteError(w)
	case errors.Is(err, service.ErrUnsupportedGrantType):
		authsdk.ErrUnsupportedGrantType.WriteError(w)
	case errors.Is(err, service.ErrUnauthenticated):
		httpx.SetBearerChallenge(w, authsdk.ErrorCodeInvalidToken, "")
		authsdk.ErrInvalidToken.WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		authsdk.ErrAccessDenied.WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		authsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrAccountExists):
		authsdk.ErrAccountExists.WriteError(w)
	case errors.Is(err, service.ErrInvalidRequest):
		desc := strings.TrimPrefix(err.Error(), service.ErrInvalidRequest.Error()+": ")
		authsdk.NewOAuth2Error(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, desc).WriteError(w)
	default:
		slogx.LogError(log, "request failed", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

// authenticate resolves the caller and rejects anonymous requests with a
// bearer challenge. On false the response has been written.
func authenticate(w http.ResponseWriter, r *http.Request, authn *service.Authenticator) (domain.Principal, bool) {
	p, err := authn.Authenticate(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, r, err)
		return domain.Principal{}, false
	}
	if p.IsAnonymous() {
		writeError(w, r, service.ErrUnauthenticated)
		return domain.Principal{}, false
	}
	return p, true
}

// authenticateSession is authenticate narrowed to bearer sessions.
func authenticateSession(w http.ResponseWriter, r *http.Request, authn *service.Authenticator) (domain.Principal, bool) {
	p, ok := authenticate(w, r, authn)
	if !ok {
		return domain.Principal{}, false
	}
	if p.Kind != domain.PrincipalSession {
		writeError(w, r, service.ErrUnauthenticated)
		return domain.Principal{}, false
	}
	return p, true
}
