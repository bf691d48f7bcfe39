// internal/api/app.go
package api

import (
	"go.uber.org/zap"

	"github.com/hei08285744/KnotulusTest-2/internal/shopify"
	"github.com/hei08285744/KnotulusTest-2/internal/store"
	"github.com/hei08285744/KnotulusTest-2/pkg/auth"
	"github.com/hei08285744/KnotulusTest-2/pkg/policy"
	"github.com/hei08285744/KnotulusTest-2/pkg/ratelimit"
)

// App is the API application container: shared deps and config only.
// Request-scoped state travels in the request context.
type App struct {
	log      *zap.SugaredLogger
	sec      *policy.Security
	store    store.Store
	verifier auth.Verifier
	limiter  ratelimit.Limiter
	shopify  *shopify.Client

	// adminRateBypass lets admin principals skip rate limiting. Only main
	// enables it, and only for dev deployments with the explicit flag set.
	adminRateBypass bool
}

func New(log *zap.SugaredLogger, sec *policy.Security, st store.Store, verifier auth.Verifier, lim ratelimit.Limiter, shop *shopify.Client, adminRateBypass bool) *App {
	return &App{
		log:             log,
		sec:             sec,
		store:           st,
		verifier:        verifier,
		limiter:         lim,
		shopify:         shop,
		adminRateBypass: adminRateBypass,
	}
}
