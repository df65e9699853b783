package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okempf/jobscout/internal/model"
)

// SourceRateLimiter enforces a minimum delay between requests to the same
// job source. Used by the background refresher, which replays many saved
// searches against the same handful of upstream APIs.
type SourceRateLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: source name
	delayFor func(source string) time.Duration
}

// NewSourceRateLimiter creates a rate limiter. delayFor returns the minimum
// gap for a given source, letting config set per-source overrides.
func NewSourceRateLimiter(delayFor func(source string) time.Duration) *SourceRateLimiter {
	return &SourceRateLimiter{
		lastCall: make(map[string]time.Time),
		delayFor: delayFor,
	}
}

// Wait blocks until enough time has passed since the last request to the
// given source. Returns an error if the context is cancelled while waiting.
func (r *SourceRateLimiter) Wait(ctx context.Context, source string) error {
	minDelay := r.delayFor(source)

	r.mu.Lock()
	last, ok := r.lastCall[source]
	now := time.Now()

	if !ok {
		// First request for this source — no wait needed.
		r.lastCall[source] = now
		r.mu.Unlock()
		return nil
	}

	elapsed := now.Sub(last)
	if elapsed >= minDelay {
		// Enough time has passed — proceed immediately.
		r.lastCall[source] = now
		r.mu.Unlock()
		return nil
	}

	// Need to wait for the remainder.
	remaining := minDelay - elapsed
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", source, ctx.Err())
	case <-time.After(remaining):
	}

	// Record the actual time after waiting.
	r.mu.Lock()
	r.lastCall[source] = time.Now()
	r.mu.Unlock()

	return nil
}

// LimitedAdapter is a decorator that waits for the shared limiter before
// delegating to the wrapped source adapter. All adapters in one refresher
// share the same limiter instance.
type LimitedAdapter struct {
	inner   model.SourceAdapter
	limiter *SourceRateLimiter
}

// NewLimitedAdapter wraps a source adapter with source-level rate limiting.
func NewLimitedAdapter(inner model.SourceAdapter, limiter *SourceRateLimiter) *LimitedAdapter {
	return &LimitedAdapter{inner: inner, limiter: limiter}
}

// Name returns the wrapped adapter's source identifier.
func (a *LimitedAdapter) Name() string { return a.inner.Name() }

// Fetch waits for the rate limiter to allow a request, then delegates.
func (a *LimitedAdapter) Fetch(ctx context.Context, req model.SearchRequest) ([]model.JobPosting, error) {
	if err := a.limiter.Wait(ctx, a.inner.Name()); err != nil {
		return nil, err
	}
	return a.inner.Fetch(ctx, req)
}
