// Package config provides centralized timeout constants for the application.
//
// These values are tuned around three constraints:
//   - chat UX: a turn that takes longer than ~30s reads as a dead bot
//   - LLM latency: classification and extraction calls usually finish in
//     1-5s but retry with backoff on transient provider errors
//   - SQLite performance characteristics (WAL mode, busy timeout)
package config

import "time"

// Webhook timeouts
const (
	// WebhookProcessing is the timeout for processing a single user turn.
	// A turn makes up to three LLM calls (route, extract, respond) plus a
	// possible HRMS submission, each with its own retry budget; 30s covers
	// the worst case while keeping the conversation responsive.
	WebhookProcessing = 30 * time.Second

	// WebhookHTTPRead is the HTTP server read timeout for webhook requests.
	// Should be short since turn payloads are small JSON.
	WebhookHTTPRead = 10 * time.Second

	// WebhookHTTPWrite is the HTTP server write timeout.
	// Should accommodate WebhookProcessing + response serialization.
	WebhookHTTPWrite = 35 * time.Second

	// WebhookHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	WebhookHTTPIdle = 120 * time.Second
)

// LLM timeouts
const (
	// LLMRequest is the timeout for a single language-model call.
	LLMRequest = 15 * time.Second

	// LLMRetryInitial is the initial delay before retrying a failed call.
	// Uses full-jitter exponential backoff: 1s -> 2s -> 4s
	LLMRetryInitial = 1 * time.Second
)

// HRMS timeouts
const (
	// HRMSRequest is the timeout for a single HTTP request to the HR system.
	HRMSRequest = 15 * time.Second

	// HRMSRetryInitial is the initial delay before retrying a failed request.
	HRMSRetryInitial = 1 * time.Second

	// ProfileLookup is the timeout for the employee profile bootstrap
	// (workers + plan balances). Runs on the first turn of a session only.
	ProfileLookup = 20 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	// Handles write contention between concurrent sessions.
	DatabaseBusyTimeout = 10 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	// Prevents stale connections and allows connection pool refresh.
	DatabaseConnMaxLifetime = time.Hour
)

// Background job intervals
const (
	// SessionCleanupInitialDelay is how long after startup the first
	// stale-session sweep runs, letting the server stabilize first.
	SessionCleanupInitialDelay = 5 * time.Minute

	// SessionCleanupInterval is how often stale sessions are deleted.
	SessionCleanupInterval = 12 * time.Hour

	// SessionMaxIdle is how long an untouched session is kept before cleanup.
	SessionMaxIdle = 7 * 24 * time.Hour

	// RateLimiterCleanupInterval is how often inactive session rate limiters are cleaned.
	RateLimiterCleanupInterval = 5 * time.Minute

	// MetricsUpdateInterval is how often the active-session gauge is refreshed.
	MetricsUpdateInterval = 5 * time.Minute
)

// Archive timeouts
const (
	// ArchiveUpload is the timeout for uploading a compressed transcript.
	// Runs detached from the request context after a completed conversation.
	ArchiveUpload = 30 * time.Second
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight turns to complete before forceful termination.
	GracefulShutdown = 30 * time.Second
)
