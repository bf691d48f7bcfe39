// pkg/auth/principal.go
package auth

import (
	"context"
)

// Principal is the verified identity attached to an authenticated request.
// It lives for one request and is never persisted.
type Principal struct {
	Subject string
	Admin   bool
	Email   string
	Claims  map[string]any
}

type ctxPrincipalKey struct{}

// WithPrincipal stores the principal in the request context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey{}, p)
}

// PrincipalFrom extracts the principal; ok is false for unauthenticated
// (public-tier) requests.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	if v := ctx.Value(ctxPrincipalKey{}); v != nil {
		if p, ok := v.(Principal); ok {
			return p, true
		}
	}
	return Principal{}, false
}

// IsOwner reports whether the principal may act on a resource owned by
// ownerID: admins always, everyone else only on their own resources.
func IsOwner(p Principal, ownerID string) bool {
	return p.Admin || (p.Subject != "" && p.Subject == ownerID)
}

// Role maps the principal onto a quota role name.
func Role(p Principal) string {
	if p.Admin {
		return "admin"
	}
	return "user"
}
