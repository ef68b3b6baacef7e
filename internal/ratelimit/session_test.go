package ratelimit

import (
	"testing"
	"time"
)

func newTestSessionLimiter(burst, refill float64) *SessionLimiter {
	return NewSessionLimiter(SessionLimiterConfig{
		Burst:         burst,
		RefillRate:    refill,
		CleanupPeriod: 10 * time.Millisecond,
	})
}

func TestSessionsLimitedIndependently(t *testing.T) {
	sl := newTestSessionLimiter(1, 0.001)
	defer sl.Stop()

	if !sl.Allow("sess-a") {
		t.Fatal("first turn for sess-a should be allowed")
	}
	if sl.Allow("sess-a") {
		t.Fatal("second turn for sess-a should be rejected")
	}
	if !sl.Allow("sess-b") {
		t.Fatal("sess-b has its own bucket")
	}
}

func TestEmptySessionIDNeverLimited(t *testing.T) {
	sl := newTestSessionLimiter(1, 0.001)
	defer sl.Stop()

	for range 10 {
		if !sl.Allow("") {
			t.Fatal("empty session ID must not be limited")
		}
	}
}

func TestOnDropCallback(t *testing.T) {
	sl := newTestSessionLimiter(1, 0.001)
	defer sl.Stop()

	drops := 0
	sl.OnDrop(func() { drops++ })

	sl.Allow("sess-a")
	sl.Allow("sess-a")
	sl.Allow("sess-a")

	if drops != 2 {
		t.Fatalf("drops = %d, want 2", drops)
	}
}

func TestIdleBucketsCleanedUp(t *testing.T) {
	sl := newTestSessionLimiter(1, 1000) // refills instantly
	defer sl.Stop()

	sl.Allow("sess-a")
	sl.Allow("sess-b")
	if got := sl.ActiveCount(); got != 2 {
		t.Fatalf("active = %d, want 2", got)
	}

	deadline := time.Now().Add(time.Second)
	for sl.ActiveCount() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("idle buckets were not cleaned up")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
