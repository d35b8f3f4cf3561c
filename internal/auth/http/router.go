package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/ut4master/api/auth" // Swagger docs
	"github.com/aussiebroadwan/ut4master/internal/auth/service"
	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/pkg/httpx"
	"github.com/aussiebroadwan/ut4master/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	clock        service.Clock

	store          store.Store
	TokenService   *service.TokenService
	SessionService *service.SessionService
	CodeService    *service.CodeService
	AccountService *service.AccountService
	Authenticator  *service.Authenticator

	// StoreTimeout bounds every request's context, and with it each store
	// call a handler makes. Zero disables it. Set before ApplyRoutes.
	StoreTimeout time.Duration
}

func NewRouter(buildVersion string, st store.Store, clock service.Clock, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		clock:        clock,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	if r.StoreTimeout > 0 {
		r.middlewares = append(r.middlewares, httpx.Deadline(r.StoreTimeout))
	}

	r.registerOAuth2()
	r.registerSessions()
	r.registerAccounts()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						UT4 Master Server Account API
//	@version					0.1.0
//	@description				Emulates the OAuth2 account service Unreal Tournament 4 builds log in against.
//	@description				Access and refresh tokens are opaque strings bound to an (account, client) session.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/ut4master
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session access token. Format: "bearer {token}".
//
//	@securityDefinitions.basic	BasicAuth
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOAuth2() {
	// POST /token - strict limit keyed by IP and client, so one client's
	// password guessing cannot lock out another client behind the same NAT.
	tokenHandler := &TokenHandler{TokenService: r.TokenService, Clock: r.clock}
	r.Mux.Handle("POST /account/api/oauth/token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIPAndClient(httpx.StrictLimit),
		),
	)

	verifyHandler := &VerifyHandler{
		Authenticator: r.Authenticator,
		Accounts:      r.AccountService,
		Clock:         r.clock,
	}
	r.Mux.Handle("GET /account/api/oauth/verify",
		httpx.Chain(verifyHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	codes := &CodeHandler{Authenticator: r.Authenticator, Codes: r.CodeService, Clock: r.clock}
	r.Mux.Handle("GET /account/api/oauth/exchange",
		httpx.Chain(http.HandlerFunc(codes.HandleExchange),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /account/api/oauth/auth",
		httpx.Chain(http.HandlerFunc(codes.HandleAuthorize),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSessions() {
	h := &SessionsHandler{Authenticator: r.Authenticator, Sessions: r.SessionService}

	r.Mux.Handle("DELETE /account/api/oauth/sessions/kill/{accessToken}",
		httpx.Chain(http.HandlerFunc(h.HandleKill),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /account/api/oauth/sessions/kill",
		httpx.Chain(http.HandlerFunc(h.HandleKillOthers),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{Authenticator: r.Authenticator, Accounts: r.AccountService}

	// POST /create/account - strict rate limit by IP (public signup endpoint)
	r.Mux.Handle("POST /account/api/create/account",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Lookups are polled by game servers for every player on the scoreboard.
	lookup := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitByIP(httpx.PublicLimit))
	}
	r.Mux.Handle("GET /account/api/public/account", lookup(h.HandleList))
	r.Mux.Handle("GET /account/api/public/account/{id}", lookup(h.HandleGet))
	r.Mux.Handle("GET /account/api/public/account/{id}/externalAuths", lookup(h.HandleExternalAuths))
	r.Mux.Handle("GET /account/api/accounts/{id}/metadata", lookup(h.HandleMetadata))
	r.Mux.Handle("GET /account/api/epicdomains/ssodomains", lookup(SSODomainsHandler()))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}
