// pkg/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"time"
)

// Window is the fixed admission window. Counters reset at discrete window
// boundaries, not on a sliding basis.
const Window = time.Minute

// SweepInterval is how often expired in-memory windows are evicted.
const SweepInterval = 5 * time.Minute

// Result reports an admission decision plus the metadata surfaced in
// X-RateLimit-* response headers.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds until the window resets; set on rejection
}

// Limiter admits or rejects one request for (key, endpoint) against limit
// requests per window.
type Limiter interface {
	Admit(ctx context.Context, key, endpoint string, limit int) (Result, error)
}
