// Package router arma el árbol de rutas del servicio sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/sideline/internal/authn"
	httpx "github.com/dropDatabas3/sideline/internal/http"
	adminctrl "github.com/dropDatabas3/sideline/internal/http/controllers/admin"
	healthctrl "github.com/dropDatabas3/sideline/internal/http/controllers/health"
	publicctrl "github.com/dropDatabas3/sideline/internal/http/controllers/public"
	mw "github.com/dropDatabas3/sideline/internal/http/middlewares"
	"github.com/dropDatabas3/sideline/internal/rate"
)

// Deps contiene todo lo que el router necesita ya construido.
type Deps struct {
	Gate *authn.Gate

	Admin  *adminctrl.Controllers
	Public *publicctrl.LeaguesController
	Health *healthctrl.HealthController

	// MetricsHandler es el handler de /metrics; nil lo deshabilita.
	MetricsHandler http.Handler

	// RateLimiter protege /api (por IP); nil lo deshabilita.
	RateLimiter rate.Limiter

	CORSAllowedOrigins []string
}

// New construye el handler raíz con la cadena de middlewares base:
// recover → request id → security headers → CORS → métricas → logging.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		mw.WithCORS(deps.CORSAllowedOrigins),
		httpx.WithMetrics,
		mw.WithLogging(),
	)

	// infra
	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if deps.RateLimiter != nil {
			api.Use(mw.WithRateLimit(deps.RateLimiter))
		}

		registerPublicRoutes(api, deps.Public)

		api.Route("/admin", func(ar chi.Router) {
			// Todo lo que cuelga de /api/admin pasa por el gate
			ar.Use(mw.RequireAdmin(deps.Gate))
			registerAdminRoutes(ar, deps.Admin)
		})
	})

	return r
}
