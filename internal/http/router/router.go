// Package router arma el árbol de rutas HTTP del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	connectctrl "github.com/socialsignin/socialguard/internal/http/controllers/connect"
	healthctrl "github.com/socialsignin/socialguard/internal/http/controllers/health"
	mectrl "github.com/socialsignin/socialguard/internal/http/controllers/me"
	signupctrl "github.com/socialsignin/socialguard/internal/http/controllers/signup"
	mw "github.com/socialsignin/socialguard/internal/http/middlewares"
	"github.com/socialsignin/socialguard/internal/rate"
	"github.com/socialsignin/socialguard/internal/security/access"
)

// Deps agrupa todo lo que el router necesita para armar las rutas.
type Deps struct {
	Signup  *signupctrl.Controller
	Connect *connectctrl.Controller
	Health  *healthctrl.HealthController
	Me      *mectrl.Controller

	// Guard
	Oracle   access.PolicyOracle
	Resolver *access.Resolver

	// Middlewares transversales
	Authentication mw.Middleware
	RateLimiter    rate.Limiter // opcional

	// Métricas
	Registry *prometheus.Registry // opcional; nil usa el registry default
}

// New construye el router con los middlewares globales y todas las rutas.
func New(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(mw.WithRecover())
	r.Use(mw.WithSecurityHeaders())
	r.Use(deps.Authentication)
	r.Use(mw.WithSignupCookie())

	// Infra: sin guard ni rate limit.
	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", metricsHandler(deps.Registry))

	// Flujo de sign-up: rate limited, nunca guarded (el usuario todavía
	// no tiene cuenta).
	r.Group(func(g chi.Router) {
		g.Use(mw.WithRateLimit(deps.RateLimiter))
		g.Get("/signup", deps.Signup.Form)
		g.Post("/signup", deps.Signup.Submit)
	})

	// Landing de vinculación: destino de los redirects del guard.
	r.Get("/connect/{provider}", deps.Connect.Landing)

	// Recursos protegidos por la política.
	r.Group(func(g chi.Router) {
		g.Use(mw.WithGuard(deps.Oracle, deps.Resolver))
		g.Get("/me", deps.Me.Me)
	})

	return r
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	if reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
