package ratelimit

import (
	"sync"
	"time"
)

// SessionLimiterConfig configures a SessionLimiter.
type SessionLimiterConfig struct {
	Burst         float64       // Turns a session may burst
	RefillRate    float64       // Tokens refilled per second
	CleanupPeriod time.Duration // How often idle session buckets are dropped
}

// SessionLimiter rate limits turns per conversation session. Each
// session gets its own token bucket; buckets that refill back to
// capacity are dropped by a background sweep so idle sessions cost
// nothing.
type SessionLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*Limiter
	config   SessionLimiterConfig
	onDrop   func()          // called when a turn is rejected
	onUpdate func(count int) // called when the active bucket count changes
	stopCh   chan struct{}
}

// NewSessionLimiter creates a SessionLimiter and starts its cleanup
// sweep. Call Stop on shutdown.
func NewSessionLimiter(cfg SessionLimiterConfig) *SessionLimiter {
	sl := &SessionLimiter{
		limiters: make(map[string]*Limiter),
		config:   cfg,
		stopCh:   make(chan struct{}),
	}

	go sl.cleanupLoop()

	return sl
}

// OnDrop registers a callback for rejected turns (e.g. a metrics counter).
func (sl *SessionLimiter) OnDrop(fn func()) {
	sl.onDrop = fn
}

// OnUpdate registers a callback for active bucket count changes.
func (sl *SessionLimiter) OnUpdate(fn func(count int)) {
	sl.onUpdate = fn
}

// Allow reports whether a turn for the session may proceed, consuming
// one token when it does. An empty session ID is never limited.
func (sl *SessionLimiter) Allow(sessionID string) bool {
	if sessionID == "" {
		return true
	}

	sl.mu.RLock()
	limiter, exists := sl.limiters[sessionID]
	sl.mu.RUnlock()

	if !exists {
		sl.mu.Lock()
		// Double-check after acquiring write lock
		limiter, exists = sl.limiters[sessionID]
		if !exists {
			limiter = New(sl.config.Burst, sl.config.RefillRate)
			sl.limiters[sessionID] = limiter
		}
		sl.mu.Unlock()
	}

	allowed := limiter.Allow()
	if !allowed && sl.onDrop != nil {
		sl.onDrop()
	}
	return allowed
}

// ActiveCount returns the number of tracked session buckets.
func (sl *SessionLimiter) ActiveCount() int {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return len(sl.limiters)
}

// cleanupLoop periodically forgets buckets that are back at capacity.
func (sl *SessionLimiter) cleanupLoop() {
	ticker := time.NewTicker(sl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-sl.stopCh:
			return
		case <-ticker.C:
			sl.mu.Lock()
			for id, limiter := range sl.limiters {
				if limiter.IsFull() {
					delete(sl.limiters, id)
				}
			}
			activeCount := len(sl.limiters)
			sl.mu.Unlock()

			if sl.onUpdate != nil {
				sl.onUpdate(activeCount)
			}
		}
	}
}

// Stop ends the cleanup sweep. Safe to call multiple times.
func (sl *SessionLimiter) Stop() {
	select {
	case <-sl.stopCh:
	default:
		close(sl.stopCh)
	}
}
