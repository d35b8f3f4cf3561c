package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/pkg/authsdk"
	"github.com/aussiebroadwan/ut4master/pkg/httpx"
	"github.com/aussiebroadwan/ut4master/pkg/slogx"
)

// readyzTimeout bounds the store ping so a hung database fails the probe
// instead of hanging it.
const readyzTimeout = 2 * time.Second

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Pings the store. Answers 503 while the store is unreachable so load balancers stop routing grants here.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"store unreachable"
//	@Router			/readyz [get]
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{Database: "ok"}
		status, code := "ok", http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			slogx.LogError(slogx.FromContext(ctx), "readiness ping failed", err)
			checks.Database = "unreachable"
			status, code = "degraded", http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, authsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Truncate(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
