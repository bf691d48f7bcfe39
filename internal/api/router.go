// internal/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hei08285744/KnotulusTest-2/pkg/middleware"
)

// Handler builds the HTTP handler with routes and middleware.
//
// Per-route order is load-bearing: the guard admits before the limiter
// counts, and the limiter admits before the handler body runs.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(a.log))
	r.Use(chimw.RealIP)
	r.Use(middleware.CORS(a.sec.CORS))
	r.Use(middleware.Tracing())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/v1", func(vr chi.Router) {
		a.route(vr, "join-waitlist", a.joinWaitlist)
		a.route(vr, "list-users", a.listUsers)
		a.route(vr, "delete-user", a.deleteUser)
		a.route(vr, "save-shop-credential", a.saveShopCredential)
		a.route(vr, "fetch-financial-summary", a.fetchFinancialSummary)
	})

	return r
}

// route mounts one endpoint under its policy-declared guard and limiter.
// Handlers check the HTTP method themselves so mismatches answer the
// original plain-text 400 rather than chi's 405.
func (a *App) route(r chi.Router, name string, h http.HandlerFunc) {
	ep := a.sec.Endpoint(name)
	guard := middleware.Guard(a.verifier, middleware.GuardOptions{
		Endpoint:   name,
		Tier:       ep.Tier,
		OwnerField: ep.OwnerField,
		AccessRule: ep.AccessRule,
	}, a.log)
	limit := middleware.RateLimit(a.sec, a.limiter, name, a.adminRateBypass, a.log)
	r.With(observe(name), guard, limit).HandleFunc("/"+name, h)
}
