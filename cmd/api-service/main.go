// cmd/api-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hei08285744/KnotulusTest-2/internal/api"
	"github.com/hei08285744/KnotulusTest-2/internal/shopify"
	"github.com/hei08285744/KnotulusTest-2/internal/store"
	"github.com/hei08285744/KnotulusTest-2/pkg/auth"
	"github.com/hei08285744/KnotulusTest-2/pkg/config"
	"github.com/hei08285744/KnotulusTest-2/pkg/db"
	"github.com/hei08285744/KnotulusTest-2/pkg/logger"
	"github.com/hei08285744/KnotulusTest-2/pkg/policy"
	"github.com/hei08285744/KnotulusTest-2/pkg/ratelimit"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	sec, err := policy.Load(cfg.PolicyFile)
	if err != nil {
		log.Fatalw("security policy", "file", cfg.PolicyFile, "err", err)
	}

	pool := db.MustConnect(cfg, log)

	var st store.Store
	if pool != nil {
		if err := store.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalw("schema", "err", err)
		}
		st = store.NewPostgres(pool, log)
	} else {
		st = store.NewMemory()
	}

	var lim ratelimit.Limiter
	if rc := db.MustRedis(cfg, log); rc != nil {
		lim = ratelimit.NewRedis(rc)
	} else {
		mem := ratelimit.NewMemory()
		mem.StartSweeper(ratelimit.SweepInterval)
		defer mem.Close()
		lim = mem
	}

	verifier := auth.NewJWKSVerifier(cfg)
	shop := shopify.NewClient(cfg.ShopifyAPIVersion, cfg.ShopifyTimeout)

	// The bypass is a dev convenience only; a prod env never gets it even
	// when the flag is set.
	adminBypass := cfg.Env == "dev" && cfg.AdminRateBypass

	app := api.New(log, sec, st, verifier, lim, shop, adminBypass)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: app.Handler()}
	go func() {
		log.Infow("api-service listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	fmt.Println("api-service stopped")
}
