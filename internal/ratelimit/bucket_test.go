package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestAllowConsumesTokens(t *testing.T) {
	limiter := New(3, 0.001) // effectively no refill during the test

	for i := range 3 {
		if !limiter.Allow() {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if limiter.Allow() {
		t.Fatal("request beyond burst capacity should be rejected")
	}
}

func TestRefillRestoresTokens(t *testing.T) {
	limiter := New(1, 50) // 50 tokens/sec

	if !limiter.Allow() {
		t.Fatal("first request should be allowed")
	}
	if limiter.Allow() {
		t.Fatal("bucket should be empty")
	}

	time.Sleep(50 * time.Millisecond)

	if !limiter.Allow() {
		t.Fatal("bucket should have refilled")
	}
}

func TestRefillCapsAtMax(t *testing.T) {
	limiter := New(2, 1000)
	time.Sleep(20 * time.Millisecond)

	if got := limiter.Available(); got > 2 {
		t.Fatalf("available = %v, want at most 2", got)
	}
}

func TestIsFullAfterIdle(t *testing.T) {
	limiter := New(1, 100)

	limiter.Allow()
	if limiter.IsFull() {
		t.Fatal("bucket should not be full right after a request")
	}

	time.Sleep(30 * time.Millisecond)
	if !limiter.IsFull() {
		t.Fatal("idle bucket should refill to capacity")
	}
}

func TestReset(t *testing.T) {
	limiter := New(1, 0.001)

	limiter.Allow()
	if limiter.Allow() {
		t.Fatal("bucket should be empty")
	}

	limiter.Reset()
	if !limiter.Allow() {
		t.Fatal("reset bucket should allow again")
	}
}

func TestAllowConcurrent(t *testing.T) {
	limiter := New(100, 0.001)

	var wg sync.WaitGroup
	allowed := make([]bool, 200)
	for i := range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed[i] = limiter.Allow()
		}()
	}
	wg.Wait()

	count := 0
	for _, ok := range allowed {
		if ok {
			count++
		}
	}
	if count != 100 {
		t.Fatalf("allowed %d requests, want exactly 100", count)
	}
}
