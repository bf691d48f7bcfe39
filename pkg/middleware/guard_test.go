package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hei08285744/KnotulusTest-2/pkg/auth"
	"github.com/hei08285744/KnotulusTest-2/pkg/policy"
	"github.com/hei08285744/KnotulusTest-2/pkg/ratelimit"
)

type stubVerifier struct {
	principals map[string]auth.Principal
}

func (s stubVerifier) Verify(_ context.Context, raw string) (auth.Principal, error) {
	if p, ok := s.principals[raw]; ok {
		return p, nil
	}
	return auth.Principal{}, errors.New("unknown token")
}

var testVerifier = stubVerifier{principals: map[string]auth.Principal{
	"user-token":  {Subject: "user-1"},
	"admin-token": {Subject: "root-1", Admin: true},
}}

func guardHandler(opts GuardOptions) (http.Handler, *bool) {
	called := false
	h := Guard(testVerifier, opts, zap.NewNop().Sugar())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	return h, &called
}

func TestGuardPublicPassesWithoutToken(t *testing.T) {
	h, called := guardHandler(GuardOptions{Endpoint: "ep", Tier: policy.TierPublic})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ep", nil))
	if !*called || w.Code != http.StatusOK {
		t.Fatalf("called=%v code=%d", *called, w.Code)
	}
}

func TestGuardRequiresBearer(t *testing.T) {
	h, called := guardHandler(GuardOptions{Endpoint: "ep", Tier: policy.TierUser})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ep", nil))
	if *called {
		t.Fatal("handler reached without credentials")
	}
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d", w.Code)
	}
}

func TestGuardRejectsBadToken(t *testing.T) {
	h, called := guardHandler(GuardOptions{Endpoint: "ep", Tier: policy.TierUser})
	req := httptest.NewRequest(http.MethodPost, "/ep", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if *called || w.Code != http.StatusUnauthorized {
		t.Fatalf("called=%v code=%d", *called, w.Code)
	}
}

func TestGuardAdminTier(t *testing.T) {
	h, called := guardHandler(GuardOptions{Endpoint: "ep", Tier: policy.TierAdmin})

	req := httptest.NewRequest(http.MethodPost, "/ep", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if *called || w.Code != http.StatusForbidden {
		t.Fatalf("non-admin: called=%v code=%d", *called, w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/ep", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if !*called || w.Code != http.StatusOK {
		t.Fatalf("admin: called=%v code=%d", *called, w.Code)
	}
}

func TestGuardOwnershipMismatch(t *testing.T) {
	h, called := guardHandler(GuardOptions{Endpoint: "ep", Tier: policy.TierUser, OwnerField: "userId"})
	req := httptest.NewRequest(http.MethodPost, "/ep", strings.NewReader(`{"userId":"user-2"}`))
	req.Header.Set("Authorization", "Bearer user-token")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if *called || w.Code != http.StatusForbidden {
		t.Fatalf("called=%v code=%d", *called, w.Code)
	}
}

func TestGuardOwnershipAbsentFieldDefersToHandler(t *testing.T) {
	h, called := guardHandler(GuardOptions{Endpoint: "ep", Tier: policy.TierUser, OwnerField: "userId"})
	req := httptest.NewRequest(http.MethodPost, "/ep", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer user-token")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if !*called {
		t.Fatal("absent owner field must reach handler validation")
	}
}

func TestGuardRestoresBodyForHandler(t *testing.T) {
	var got string
	h := Guard(testVerifier, GuardOptions{Endpoint: "ep", Tier: policy.TierUser, OwnerField: "userId"}, zap.NewNop().Sugar())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			got = string(b)
		}))
	payload := `{"userId":"user-1","extra":true}`
	req := httptest.NewRequest(http.MethodPost, "/ep", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer user-token")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != payload {
		t.Fatalf("handler body = %q, want %q", got, payload)
	}
}

func TestGuardAttachesPrincipal(t *testing.T) {
	var p auth.Principal
	var ok bool
	h := Guard(testVerifier, GuardOptions{Endpoint: "ep", Tier: policy.TierUser}, zap.NewNop().Sugar())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok = auth.PrincipalFrom(r.Context())
		}))
	req := httptest.NewRequest(http.MethodPost, "/ep", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !ok || p.Subject != "user-1" {
		t.Fatalf("principal = %+v ok=%v", p, ok)
	}
}

// brokenLimiter always errors, standing in for an unreachable backend.
type brokenLimiter struct{}

func (brokenLimiter) Admit(context.Context, string, string, int) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("backend down")
}

func TestRateLimitFailsOpenOnBackendError(t *testing.T) {
	sec := policy.Defaults()
	called := false
	h := RateLimit(sec, brokenLimiter{}, "join-waitlist", false, zap.NewNop().Sugar())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/ep", nil))
	if !called {
		t.Fatal("limiter backend failure must not reject traffic")
	}
}

func TestRateLimitAdminBypass(t *testing.T) {
	sec := policy.Defaults()
	called := false
	h := RateLimit(sec, brokenLimiter{}, "list-users", true, zap.NewNop().Sugar())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
	req := httptest.NewRequest(http.MethodGet, "/ep", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{Subject: "root", Admin: true}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Fatal("admin bypass did not skip the limiter")
	}
}
