package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/okempf/jobscout/internal/model"
)

func fixedDelay(d time.Duration) func(string) time.Duration {
	return func(string) time.Duration { return d }
}

func TestWait_SameSource_EnforcesMinDelay(t *testing.T) {
	limiter := NewSourceRateLimiter(fixedDelay(100 * time.Millisecond))
	ctx := context.Background()

	// First call should return immediately.
	if err := limiter.Wait(ctx, "adzuna"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "adzuna"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited at least ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("second call waited %v, want at least ~100ms", elapsed)
	}
}

func TestWait_DifferentSources_NoDelay(t *testing.T) {
	limiter := NewSourceRateLimiter(fixedDelay(time.Second))
	ctx := context.Background()

	if err := limiter.Wait(ctx, "adzuna"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "remoteok"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("different source waited %v, want immediate", elapsed)
	}
}

func TestWait_PerSourceOverride(t *testing.T) {
	delays := map[string]time.Duration{"adzuna": 100 * time.Millisecond}
	limiter := NewSourceRateLimiter(func(source string) time.Duration {
		return delays[source] // zero for everything else
	})
	ctx := context.Background()

	if err := limiter.Wait(ctx, "remoteok"); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	start := time.Now()
	if err := limiter.Wait(ctx, "remoteok"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("zero-delay source waited %v", elapsed)
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	limiter := NewSourceRateLimiter(fixedDelay(time.Minute))
	ctx, cancel := context.WithCancel(context.Background())

	if err := limiter.Wait(ctx, "adzuna"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	cancel()
	if err := limiter.Wait(ctx, "adzuna"); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}

type countingAdapter struct {
	calls int
}

func (a *countingAdapter) Name() string { return "stub" }

func (a *countingAdapter) Fetch(_ context.Context, _ model.SearchRequest) ([]model.JobPosting, error) {
	a.calls++
	return nil, nil
}

func TestLimitedAdapter_DelegatesAfterWait(t *testing.T) {
	inner := &countingAdapter{}
	limiter := NewSourceRateLimiter(fixedDelay(0))
	adapter := NewLimitedAdapter(inner, limiter)

	if adapter.Name() != "stub" {
		t.Errorf("Name = %q", adapter.Name())
	}
	if _, err := adapter.Fetch(context.Background(), model.SearchRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times", inner.calls)
	}
}

func TestLimitedAdapter_CancelledContextSkipsFetch(t *testing.T) {
	inner := &countingAdapter{}
	limiter := NewSourceRateLimiter(fixedDelay(time.Minute))
	adapter := NewLimitedAdapter(inner, limiter)

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := adapter.Fetch(ctx, model.SearchRequest{}); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	cancel()
	if _, err := adapter.Fetch(ctx, model.SearchRequest{}); err == nil {
		t.Fatal("expected error after cancel")
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
}
