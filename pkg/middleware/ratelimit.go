// pkg/middleware/ratelimit.go
package middleware

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/hei08285744/KnotulusTest-2/pkg/auth"
	"github.com/hei08285744/KnotulusTest-2/pkg/policy"
	"github.com/hei08285744/KnotulusTest-2/pkg/ratelimit"
)

// RateLimit enforces the per-minute quota for one endpoint. The key is the
// authenticated subject when present, else the client IP. Runs after Guard so
// public traffic is keyed by origin and authenticated traffic by principal.
//
// adminBypass skips limiting for admin principals; callers must only enable
// it in development deployments.
func RateLimit(sec *policy.Security, lim ratelimit.Limiter, endpoint string, adminBypass bool, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key := ""
			role := "user"
			if p, ok := auth.PrincipalFrom(r.Context()); ok {
				if p.Admin && adminBypass {
					next.ServeHTTP(w, r)
					return
				}
				key = p.Subject
				role = auth.Role(p)
			}
			if key == "" {
				key = clientIP(r)
			}

			quota := sec.Quota(role, endpoint)
			res, err := lim.Admit(r.Context(), key, endpoint, quota)
			if err != nil {
				// Availability over strictness: a broken limiter backend must
				// not take the API down.
				log.Errorw("rate limiter error", "endpoint", endpoint, "err", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", res.ResetAt.UTC().Format(time.RFC3339))

			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(res.RetryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success":    false,
					"error":      fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", res.RetryAfter),
					"retryAfter": res.RetryAfter,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
