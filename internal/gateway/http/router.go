package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/service"
	"github.com/aussiebroadwan/sessiongate/internal/gateway/store"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"

	_ "github.com/aussiebroadwan/sessiongate/api/gateway" // Swagger docs
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	cookies      *CookieJar
	metrics      *Metrics
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	nonces             store.NonceStore
	revalidationSecret string

	AuthService      *service.AuthService
	FederatedService *service.FederatedService
}

func NewRouter(
	cookies *CookieJar,
	metrics *Metrics,
	nonces store.NonceStore,
	revalidationSecret string,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:                http.NewServeMux(),
		cookies:            cookies,
		metrics:            metrics,
		nonces:             nonces,
		revalidationSecret: revalidationSecret,
		buildVersion:       buildVersion,
		startTime:          time.Now(),
		logger:             logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerOIDC()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Session Gateway API
//	@version		0.1.0
//	@description	Backend-for-frontend that turns credential and federated logins into
//	@description	durable HttpOnly cookie sessions. Tokens never appear in response
//	@description	bodies; the browser holds them only as cookies scoped to this host.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/sessiongate
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /auth/login - strict rate limit (authentication attempts)
	loginHandler := &LoginHandler{
		AuthService: r.AuthService,
		Cookies:     r.cookies,
		Metrics:     r.metrics,
	}
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/register - strict rate limit (public signup endpoint)
	registerHandler := &RegisterHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/logout - moderate rate limit, always succeeds
	logoutHandler := &LogoutHandler{
		AuthService: r.AuthService,
		Cookies:     r.cookies,
	}
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(logoutHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// GET /auth/me - lenient rate limit (every page load probes this)
	meHandler := &MeHandler{AuthService: r.AuthService}
	r.Mux.Handle("GET /auth/me",
		httpx.Chain(meHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /auth/refresh - moderate rate limit (interceptors coalesce, but
	// a misbehaving client should still be contained)
	refreshHandler := &RefreshHandler{
		AuthService: r.AuthService,
		Cookies:     r.cookies,
		Metrics:     r.metrics,
	}
	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerOIDC() {
	h := &OIDCHandler{
		FederatedService: r.FederatedService,
		Cookies:          r.cookies,
		Metrics:          r.metrics,
	}

	r.Mux.Handle("GET /auth/oidc/status",
		httpx.Chain(http.HandlerFunc(h.HandleStatus),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /auth/oidc/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /auth/oidc/callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.nonces),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /metrics", promhttp.Handler())

	// POST /revalidate - trusted backend webhook, secret-authenticated
	revalidateHandler := &RevalidateHandler{
		Secret:  r.revalidationSecret,
		Metrics: r.metrics,
	}
	r.Mux.Handle("POST /revalidate",
		httpx.Chain(revalidateHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}
