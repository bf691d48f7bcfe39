// pkg/ratelimit/memory.go
package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

// Memory is a fixed-window limiter backed by a process-local map. It is
// best-effort and single-instance: counters are not shared across replicas.
// Deployments that scale horizontally should use the Redis limiter instead.
type Memory struct {
	mu      sync.Mutex
	windows map[string]*window

	now  func() time.Time
	done chan struct{}
	once sync.Once
}

type window struct {
	count   int
	resetAt time.Time
}

func NewMemory() *Memory {
	return &Memory{
		windows: make(map[string]*window),
		now:     time.Now,
		done:    make(chan struct{}),
	}
}

// Admit implements Limiter. The read-check-increment sequence runs under one
// mutex so concurrent requests for the same key serialize.
func (m *Memory) Admit(_ context.Context, key, endpoint string, limit int) (Result, error) {
	k := key + "|" + endpoint

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[k]
	if !ok {
		w = &window{resetAt: now.Add(Window)}
		m.windows[k] = w
	}
	if now.After(w.resetAt) {
		w.count = 0
		w.resetAt = now.Add(Window)
	}
	if w.count >= limit {
		retry := int(math.Ceil(w.resetAt.Sub(now).Seconds()))
		if retry < 1 {
			retry = 1
		}
		return Result{Limit: limit, ResetAt: w.resetAt, RetryAfter: retry}, nil
	}
	w.count++
	remaining := limit - w.count
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Limit: limit, Remaining: remaining, ResetAt: w.resetAt}, nil
}

// Sweep drops windows that have already expired, bounding memory for
// abandoned keys. It never removes a window that is still live.
func (m *Memory) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, w := range m.windows {
		if now.After(w.resetAt) {
			delete(m.windows, k)
		}
	}
}

// StartSweeper runs Sweep every interval until Close is called.
func (m *Memory) StartSweeper(interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				m.Sweep()
			case <-m.done:
				return
			}
		}
	}()
}

func (m *Memory) Close() {
	m.once.Do(func() { close(m.done) })
}
