package webhook

import (
	"sync"
	"testing"
	"time"
)

func TestSessionLocksForgetIdleSessions(t *testing.T) {
	locks := newSessionLocks()

	unlock := locks.lock("sess-1")
	if len(locks.locks) != 1 {
		t.Fatalf("locks = %d, want 1", len(locks.locks))
	}
	unlock()

	if len(locks.locks) != 0 {
		t.Fatalf("locks = %d after release, want 0", len(locks.locks))
	}
}

func TestSessionLocksMutualExclusion(t *testing.T) {
	locks := newSessionLocks()

	counter := 0
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("sess-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
}

func TestSessionLocksIndependentSessions(t *testing.T) {
	locks := newSessionLocks()

	unlockA := locks.lock("sess-a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := locks.lock("sess-b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("locking sess-b blocked on sess-a's lock")
	}
}
