// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	// OIDC / JWT token verification
	Issuer    string
	Audience  string
	JWKSURL   string
	JWTSkew   time.Duration
	JWKSTTL   time.Duration

	// Security policy override file (YAML); empty means built-in defaults.
	PolicyFile string

	// Shopify admin API
	ShopifyAPIVersion string
	ShopifyTimeout    time.Duration

	// Admin principals skip rate limiting when this is set AND Env == "dev".
	AdminRateBypass bool

	// Redis & Postgres
	RedisURL    string
	DatabaseURL string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:               env("KNOTULUS_ENV", "dev"),
		HTTPAddr:          env("KNOTULUS_HTTP_ADDR", ":8080"),
		Issuer:            env("OIDC_ISSUER", ""),
		Audience:          env("OIDC_AUDIENCE", "knotulus-api"),
		JWKSURL:           env("JWKS_URL", ""),
		JWTSkew:           envDur("JWT_CLOCK_SKEW_SEC", 60) * time.Second,
		JWKSTTL:           envDur("JWKS_TTL_SEC", 6*3600) * time.Second,
		PolicyFile:        env("SECURITY_POLICY_FILE", ""),
		ShopifyAPIVersion: env("SHOPIFY_API_VERSION", "2024-04"),
		ShopifyTimeout:    envDur("SHOPIFY_TIMEOUT_SEC", 15) * time.Second,
		AdminRateBypass:   envBool("ADMIN_RATE_BYPASS", false),
		RedisURL:          env("REDIS_URL", ""),
		DatabaseURL:       env("DATABASE_URL", ""),
	}
	if cfg.DatabaseURL == "" {
		log.Println("[WARN] DATABASE_URL not set — using in-memory document store for dev")
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		b, _ := strconv.ParseBool(v)
		return b
	}
	return def
}
func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, _ := strconv.Atoi(v)
		return time.Duration(i)
	}
	return time.Duration(def)
}
