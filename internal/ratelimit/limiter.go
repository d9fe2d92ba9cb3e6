// Package ratelimit provides fixed-window request admission control.
package ratelimit

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Headers describes the limiter state reported to clients.
type Headers struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter admits up to Limit requests per identifier per fixed window.
// It never errors; Admit only answers yes or no.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	window  time.Duration
	bypass  bool
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLogger sets a logger for sweep reporting.
func WithLogger(l *zap.Logger) Option {
	return func(rl *Limiter) { rl.logger = l }
}

// WithClock overrides the time source. Used by tests to control windows.
func WithClock(now func() time.Time) Option {
	return func(rl *Limiter) { rl.now = now }
}

// WithBypass disables enforcement entirely. Ops/test environments only.
func WithBypass(bypass bool) Option {
	return func(rl *Limiter) { rl.bypass = bypass }
}

// NewLimiter creates a limiter admitting limit requests per windowDur per identifier.
func NewLimiter(limit int, windowDur time.Duration, opts ...Option) *Limiter {
	rl := &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		window:  windowDur,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// SetBypass toggles enforcement at runtime (config hot-reload).
func (rl *Limiter) SetBypass(bypass bool) {
	rl.mu.Lock()
	rl.bypass = bypass
	rl.mu.Unlock()
}

// Admit reports whether a request for identifier is allowed. The first
// request of a fresh window always is. Rejections do not increment the
// counter, so repeated rejected requests see a stable remaining count.
func (rl *Limiter) Admit(identifier string) bool {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.bypass {
		return true
	}
	w, ok := rl.windows[identifier]
	if !ok || now.After(w.resetAt) {
		rl.windows[identifier] = &window{count: 1, resetAt: now.Add(rl.window)}
		return true
	}
	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

// Headers returns the current limiter state for identifier. Safe to call
// whether or not the identifier has been seen.
func (rl *Limiter) Headers(identifier string) Headers {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[identifier]
	if !ok || now.After(w.resetAt) {
		return Headers{Limit: rl.limit, Remaining: rl.limit, ResetAt: now.Add(rl.window)}
	}
	remaining := rl.limit - w.count
	if remaining < 0 {
		remaining = 0
	}
	return Headers{Limit: rl.limit, Remaining: remaining, ResetAt: w.resetAt}
}

// Sweep deletes expired windows and returns how many were removed. Bounds
// memory for identifiers that stop sending requests.
func (rl *Limiter) Sweep() int {
	now := rl.now()
	rl.mu.Lock()
	removed := 0
	for id, w := range rl.windows {
		if now.After(w.resetAt) {
			delete(rl.windows, id)
			removed++
		}
	}
	rl.mu.Unlock()
	if removed > 0 && rl.logger != nil {
		rl.logger.Debug("rate limiter sweep", zap.Int("removed", removed))
	}
	return removed
}

// Reset clears all windows. Test helper.
func (rl *Limiter) Reset() {
	rl.mu.Lock()
	rl.windows = make(map[string]*window)
	rl.mu.Unlock()
}

// Len returns the number of tracked identifiers.
func (rl *Limiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.windows)
}

// StartSweeper runs Sweep every interval until stop is closed.
func (rl *Limiter) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.Sweep()
			case <-stop:
				return
			}
		}
	}()
}
