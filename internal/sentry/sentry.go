// Package sentry wraps the Sentry Go SDK so the rest of the application
// never touches its global state directly. Initialization is driven by
// config.SentryConfig and is a no-op when the feature is disabled.
package sentry

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/conneqt/leavebot-go/internal/buildinfo"
	"github.com/conneqt/leavebot-go/internal/config"
)

// Initialize sets up the Sentry SDK. Returns nil without initializing
// when the feature is disabled.
func Initialize(cfg config.SentryConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.DSN == "" {
		return fmt.Errorf("sentry dsn is required when sentry is enabled")
	}

	release := cfg.Release
	if release == "" {
		release = buildinfo.Version
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		SampleRate:       sampleRate,
		TracesSampleRate: cfg.TracesSampleRate,
		AttachStacktrace: true,
	})
}

// Flush waits for buffered events to be sent to the server.
// Returns true if all events were sent within the timeout.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// IsEnabled reports whether Sentry was initialized with a client.
func IsEnabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// CaptureExceptionWithContext captures an error using the hub attached
// to the request context when one exists (set by the gin middleware).
// Safe to call when Sentry is disabled; the SDK drops the event.
func CaptureExceptionWithContext(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}
