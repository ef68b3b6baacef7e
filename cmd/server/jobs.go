// Package main provides the leave-request chatbot server entry point.
package main

import (
	"context"
	"time"

	"github.com/conneqt/leavebot-go/internal/config"
	"github.com/conneqt/leavebot-go/internal/logger"
	"github.com/conneqt/leavebot-go/internal/metrics"
	"github.com/conneqt/leavebot-go/internal/session"
)

// cleanupStaleSessions periodically deletes sessions idle longer than
// config.SessionMaxIdle. Abandoned conversations would otherwise
// accumulate forever; completed ones are removed here too since a
// submitted request leaves only a profile behind.
func cleanupStaleSessions(ctx context.Context, store *session.SQLiteStore, log *logger.Logger) {
	// Run initial cleanup after a delay to let the server stabilize
	select {
	case <-ctx.Done():
		return
	case <-time.After(config.SessionCleanupInitialDelay):
		performSessionCleanup(ctx, store, log)
	}

	ticker := time.NewTicker(config.SessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			performSessionCleanup(ctx, store, log)
		}
	}
}

// performSessionCleanup executes one stale-session sweep
func performSessionCleanup(ctx context.Context, store *session.SQLiteStore, log *logger.Logger) {
	start := time.Now()
	log.Info("Starting stale session cleanup...")

	deleted, err := store.DeleteStale(ctx, config.SessionMaxIdle)
	if err != nil {
		log.WithError(err).Error("Failed to delete stale sessions")
		return
	}

	remaining, err := store.Count(ctx)
	if err != nil {
		log.WithError(err).Debug("Failed to count sessions after cleanup")
	}

	log.WithFields(map[string]any{
		"deleted":     deleted,
		"remaining":   remaining,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Stale session cleanup complete")
}

// updateSessionMetrics periodically refreshes the active-session gauge
func updateSessionMetrics(ctx context.Context, store *session.SQLiteStore, m *metrics.Metrics, log *logger.Logger) {
	ticker := time.NewTicker(config.MetricsUpdateInterval)
	defer ticker.Stop()

	// Run initial update immediately
	performSessionMetricsUpdate(ctx, store, m, log)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			performSessionMetricsUpdate(ctx, store, m, log)
		}
	}
}

func performSessionMetricsUpdate(ctx context.Context, store *session.SQLiteStore, m *metrics.Metrics, log *logger.Logger) {
	count, err := store.Count(ctx)
	if err != nil {
		log.WithError(err).Debug("Failed to count sessions for metrics")
		return
	}
	m.SetActiveSessions(count)
}
