// pkg/auth/verifier.go
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/hei08285744/KnotulusTest-2/pkg/config"
)

// Verifier turns a raw bearer token into a Principal or fails. The service
// treats the issuer as a trusted oracle: a verification failure is always a
// rejection, never anonymous access.
type Verifier interface {
	Verify(ctx context.Context, raw string) (Principal, error)
}

var ErrNotConfigured = errors.New("token verification not configured")

// jwksCache caches JWKS sets per URL.
type jwksCache struct {
	mu   sync.RWMutex
	sets map[string]cachedJWKS
}

type cachedJWKS struct {
	set     jwk.Set
	expires time.Time
}

func (c *jwksCache) get(ctx context.Context, url string, ttl time.Duration) (jwk.Set, error) {
	c.mu.RLock()
	if e, ok := c.sets[url]; ok && time.Now().Before(e.expires) {
		c.mu.RUnlock()
		return e.set, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sets == nil {
		c.sets = map[string]cachedJWKS{}
	}
	if e, ok := c.sets[url]; ok && time.Now().Before(e.expires) {
		return e.set, nil
	}
	set, err := jwk.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	c.sets[url] = cachedJWKS{set: set, expires: time.Now().Add(ttl)}
	return set, nil
}

// jwksVerifier validates JWTs against a remote JWKS endpoint.
type jwksVerifier struct {
	issuer   string
	audience string
	jwksURL  string
	skew     time.Duration
	ttl      time.Duration
	cache    *jwksCache
}

// NewJWKSVerifier builds the production verifier from config.
func NewJWKSVerifier(cfg config.Config) Verifier {
	return &jwksVerifier{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		jwksURL:  cfg.JWKSURL,
		skew:     cfg.JWTSkew,
		ttl:      cfg.JWKSTTL,
		cache:    &jwksCache{},
	}
}

func (v *jwksVerifier) Verify(ctx context.Context, raw string) (Principal, error) {
	if v.issuer == "" || v.jwksURL == "" {
		return Principal{}, ErrNotConfigured
	}
	set, err := v.cache.get(ctx, v.jwksURL, v.ttl)
	if err != nil {
		return Principal{}, err
	}
	parseOpts := []jwt.ParseOption{
		jwt.WithKeySet(set),
		jwt.WithIssuer(v.issuer),
		jwt.WithValidate(true),
		jwt.WithVerify(true),
		jwt.WithAcceptableSkew(v.skew),
	}
	if v.audience != "" {
		parseOpts = append(parseOpts, jwt.WithAudience(v.audience))
	}
	jt, err := jwt.Parse([]byte(raw), parseOpts...)
	if err != nil {
		return Principal{}, err
	}
	p := Principal{Subject: jt.Subject()}
	if a, ok := jt.Get("admin"); ok {
		p.Admin, _ = a.(bool)
	}
	if e, ok := jt.Get("email"); ok {
		p.Email, _ = e.(string)
	}
	if m, err := jt.AsMap(ctx); err == nil {
		p.Claims = m
	}
	return p, nil
}
