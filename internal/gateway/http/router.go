package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ifrsconsole/console/internal/gateway/service"
	"github.com/ifrsconsole/console/internal/gateway/store"
	"github.com/ifrsconsole/console/pkg/httpx"
	"github.com/ifrsconsole/console/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/ifrsconsole/console/api/gateway" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	limits       httpx.RateLimits
	secureCookie bool
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	AuthService       *service.AuthService
	TwoFactorService  *service.TwoFactorService
	PermissionService *service.PermissionService
}

func NewRouter(
	buildVersion string,
	limits httpx.RateLimits,
	secureCookie bool,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		limits:       limits,
		secureCookie: secureCookie,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerTwoFactor()
	r.registerPermissions()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			IFRS Console Gateway API
//	@version		0.1.0
//	@description	Session gateway for the IFRS console. Logs users in against the IFRS backend,
//	@description	enforces the TOTP second factor and answers page and database permission checks.
//
//	@contact.name				IFRS Console Team
//	@contact.url				https://github.com/ifrsconsole/console
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
//	@description				Gateway session token. Format: "Bearer {token}". The console_session cookie is accepted as well.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authed wraps h with session authentication and a per-session rate limit.
func (r *Router) authed(h http.Handler, limit httpx.RateLimitConfig, mws ...httpx.Middleware) http.Handler {
	chain := []httpx.Middleware{SessionMiddleware(r.AuthService)}
	chain = append(chain, mws...)
	chain = append(chain, httpx.RateLimitBySession(limit))
	return httpx.Chain(h, chain...)
}

func (r *Router) registerSession() {
	h := &SessionHandler{
		AuthService:  r.AuthService,
		TwoFactor:    r.TwoFactorService,
		SecureCookie: r.secureCookie,
	}

	// POST /login - strict rate limit by IP (credential attempts)
	r.Mux.Handle("POST /v1/session/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)

	r.Mux.Handle("POST /v1/session/logout", r.authed(http.HandlerFunc(h.HandleLogout), r.limits.Moderate))
	r.Mux.Handle("GET /v1/session", r.authed(http.HandlerFunc(h.HandleGet), r.limits.Lenient))
}

func (r *Router) registerTwoFactor() {
	h := &TwoFactorHandler{TwoFactorService: r.TwoFactorService}

	r.Mux.Handle("GET /v1/2fa/status", r.authed(http.HandlerFunc(h.HandleStatus), r.limits.Lenient))

	// Code checks are the brute-force surface, so they get the strict limit on
	// top of the lockout.
	r.Mux.Handle("POST /v1/2fa/verify", r.authed(http.HandlerFunc(h.HandleVerify), r.limits.Strict))
	r.Mux.Handle("POST /v1/2fa/backup-codes/verify", r.authed(http.HandlerFunc(h.HandleVerifyBackupCode), r.limits.Strict))

	// Changing the enrollment requires a fully authenticated session
	r.Mux.Handle("POST /v1/2fa/setup", r.authed(http.HandlerFunc(h.HandleSetup), r.limits.Moderate, RequireSecondFactor))
	r.Mux.Handle("DELETE /v1/2fa/setup", r.authed(http.HandlerFunc(h.HandleCancelSetup), r.limits.Moderate))
	r.Mux.Handle("POST /v1/2fa/enable", r.authed(http.HandlerFunc(h.HandleEnable), r.limits.Strict, RequireSecondFactor))
	r.Mux.Handle("DELETE /v1/2fa", r.authed(http.HandlerFunc(h.HandleDisable), r.limits.Moderate, RequireSecondFactor))
}

func (r *Router) registerPermissions() {
	h := &PermissionsHandler{PermissionService: r.PermissionService}

	gated := func(fn http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return r.authed(fn, limit, RequireSecondFactor)
	}

	r.Mux.Handle("GET /v1/permissions", gated(h.HandleGet, r.limits.Lenient))
	r.Mux.Handle("POST /v1/permissions/refresh", gated(h.HandleRefresh, r.limits.Moderate))
	r.Mux.Handle("GET /v1/permissions/pages", gated(h.HandlePage, r.limits.Lenient))
	r.Mux.Handle("GET /v1/permissions/databases", gated(h.HandleDatabases, r.limits.Lenient))
	r.Mux.Handle("GET /v1/permissions/databases/{name}", gated(h.HandleDatabase, r.limits.Lenient))
	r.Mux.Handle("POST /v1/access-requests", gated(h.HandleAccessRequest, r.limits.Moderate))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}
