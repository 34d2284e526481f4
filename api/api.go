package api

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/windbackhq/windback-bff/internal/logger"
	"github.com/windbackhq/windback-bff/session"
	"github.com/windbackhq/windback-bff/upstream"
)

// API holds the dependencies needed by the BFF handlers. It keeps no
// per-session state: the session cookie on each request is the only source of
// truth, and everything else lives upstream.
type API struct {
	sessions *session.Store
	upstream *upstream.Client
	log      logger.Sugared
	audit    *auditLogger
	metrics  *Metrics
}

//go:embed openapi.yaml
var openapiDoc []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the logger used for request failures and audit events.
// If not set, logging is discarded.
func WithLogger(log logger.Sugared) Option {
	return func(a *API) {
		a.log = log
	}
}

// WithMetrics records auth events on m.
func WithMetrics(m *Metrics) Option {
	return func(a *API) {
		a.metrics = m
	}
}

// New creates a new API instance.
func New(sessions *session.Store, up *upstream.Client, opts ...Option) *API {
	a := &API{
		sessions: sessions,
		upstream: up,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.Nop()
	}
	a.audit = newAuditLogger(a.log, a.metrics)
	return a
}

// Router returns a chi.Router with all BFF routes. It is meant to be mounted
// at /api.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiDoc)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/openapi.yaml",
		Path:    "api/docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/openapi.yaml",
		Path:    "api/redoc",
	}, nil))

	r.Group(func(r chi.Router) {
		r.Use(a.sessions.Middleware)

		r.Post("/auth/login", a.Login)
		r.Get("/auth/me", a.Me)
		r.Post("/auth/register", a.Register)
		r.Post("/auth/onboarding", a.Onboarding)
		r.Post("/auth/logout", a.Logout)
		r.Post("/auth/forgot-password", a.ForgotPassword)
		r.Get("/auth/oauth/{provider}", a.OAuthRedirect)
		r.Post("/auth/oauth/callback", a.OAuthCallback)

		r.Post("/billing/checkout", a.BillingCheckout)
		r.Post("/billing/portal", a.BillingPortal)
		r.Get("/billing/usage", a.BillingUsage)

		r.Route("/proxy", func(r chi.Router) {
			for _, method := range proxyMethods {
				r.Method(method, "/*", http.HandlerFunc(a.Proxy))
			}
		})
	})

	return r
}
