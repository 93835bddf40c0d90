package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"

	_ "github.com/aussiebroadwan/tokenauth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Limits are the rate limit profiles the routes pick from. Zero fields fall
// back to the httpx defaults.
type Limits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig

	// TrustProxyHeaders keys anonymous callers by X-Forwarded-For or
	// X-Real-IP. Only enable it behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	users  store.Users
	tokens store.TokenStore
	limits Limits

	TokenService *service.TokenService
	Validator    *service.TokenValidator
	Resolver     *service.AuthResolver
}

func NewRouter(
	buildVersion string,
	users store.Users,
	tokens store.TokenStore,
	limits Limits,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		users:        users,
		tokens:       tokens,
		limits: Limits{
			Strict:            limits.Strict.Or(httpx.StrictLimit),
			Moderate:          limits.Moderate.Or(httpx.ModerateLimit),
			TrustProxyHeaders: limits.TrustProxyHeaders,
		},
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Token Auth Service API
//	@version		0.1.0
//	@description	Issues, rotates and revokes HS256 access tokens and opaque refresh tokens.
//	@description
//	@description				Access tokens are short lived JWTs. Refresh tokens are single use; every refresh returns a new one.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tokenauth
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
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) authenticate() httpx.Middleware {
	return Authenticate(r.Validator, r.Resolver)
}

func (r *Router) clientIP() httpx.KeyExtractor {
	if r.limits.TrustProxyHeaders {
		return httpx.ForwardedIPKeyExtractor
	}
	return httpx.IPKeyExtractor
}

func (r *Router) limitByIP(cfg httpx.RateLimitConfig) httpx.Middleware {
	return httpx.RateLimitMiddleware(cfg, r.clientIP())
}

func (r *Router) limitByUser(cfg httpx.RateLimitConfig) httpx.Middleware {
	return httpx.RateLimitMiddleware(cfg, httpx.UserOrKeyExtractor(r.clientIP()))
}

func (r *Router) registerAuth() {
	// POST /token - strict rate limit by IP, refresh tokens are bearer secrets
	tokenHandler := &TokenHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/token",
		httpx.Chain(tokenHandler,
			r.limitByIP(r.limits.Strict),
		),
	)

	logoutHandler := &LogoutHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			r.authenticate(),
			httpx.RequireAuthenticated,
			r.limitByUser(r.limits.Moderate),
		),
	)

	// Trusted sign-in front ends mint the first pair for a user here.
	issueHandler := &IssueHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/issue",
		httpx.Chain(issueHandler,
			r.authenticate(),
			httpx.RequireAnyAuthority(domain.RoleAdmin.String()),
			r.limitByUser(r.limits.Moderate),
		),
	)

	// Introspection hands out other people's claims, admins only.
	introspectHandler := &IntrospectHandler{Validator: r.Validator}
	r.Mux.Handle("POST /v1/auth/introspect",
		httpx.Chain(introspectHandler,
			r.authenticate(),
			httpx.RequireAnyAuthority(domain.RoleAdmin.String()),
			r.limitByUser(r.limits.Moderate),
		),
	)
}

func (r *Router) registerUsers() {
	// Anonymous callers are allowed through and get id 0.
	r.Mux.Handle("GET /v1/users/me",
		httpx.Chain(&MeHandler{},
			r.authenticate(),
			r.limitByUser(r.limits.Moderate),
		),
	)
}

func (r *Router) registerSystem() {
	// Monitoring systems may poll frequently, keyed by IP only.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			r.limitByIP(r.limits.Moderate),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.users, r.tokens),
			r.limitByIP(r.limits.Moderate),
		),
	)
}
