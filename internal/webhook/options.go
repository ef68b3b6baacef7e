package webhook

import (
	"time"

	"github.com/conneqt/leavebot-go/internal/config"
	"github.com/conneqt/leavebot-go/internal/metrics"
	"github.com/conneqt/leavebot-go/internal/ratelimit"
)

// HandlerOption is a functional option for configuring Handler.
type HandlerOption func(*Handler)

// WithConfig applies the server configuration's webhook settings.
func WithConfig(cfg *config.Config) HandlerOption {
	return func(h *Handler) {
		h.timeout = cfg.WebhookTimeout
		h.global = ratelimit.New(cfg.GlobalRateLimitRPS, cfg.GlobalRateLimitRPS)
		h.sessions = ratelimit.NewSessionLimiter(ratelimit.SessionLimiterConfig{
			Burst:         cfg.SessionRateLimitBurst,
			RefillRate:    cfg.SessionRateLimitRefill,
			CleanupPeriod: config.RateLimiterCleanupInterval,
		})
	}
}

// WithTimeout sets the per-turn processing timeout.
func WithTimeout(timeout time.Duration) HandlerOption {
	return func(h *Handler) {
		h.timeout = timeout
	}
}

// WithMetrics enables request instrumentation.
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithSessionRateLimit overrides the per-session token bucket.
func WithSessionRateLimit(burst, refillRate float64) HandlerOption {
	return func(h *Handler) {
		if h.sessions != nil {
			h.sessions.Stop()
		}
		h.sessions = ratelimit.NewSessionLimiter(ratelimit.SessionLimiterConfig{
			Burst:         burst,
			RefillRate:    refillRate,
			CleanupPeriod: config.RateLimiterCleanupInterval,
		})
	}
}

// WithGlobalRateLimit overrides the service-wide token bucket.
func WithGlobalRateLimit(rps float64) HandlerOption {
	return func(h *Handler) {
		h.global = ratelimit.New(rps, rps)
	}
}
