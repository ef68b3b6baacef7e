// Package main provides the leave-request chatbot server entry point.
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/conneqt/leavebot-go/internal/buildinfo"
	"github.com/conneqt/leavebot-go/internal/config"
	"github.com/conneqt/leavebot-go/internal/metrics"
	"github.com/conneqt/leavebot-go/internal/session"
	"github.com/conneqt/leavebot-go/internal/webhook"
)

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, webhookHandler *webhook.Handler, store *session.SQLiteStore, m *metrics.Metrics, cfg *config.Config) {
	// Root endpoint - service identity
	rootHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "leavebot",
			"version": buildinfo.Version,
			"commit":  buildinfo.Commit,
		})
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Health check endpoints
	// Liveness Probe - checks if the application is alive (minimal check)
	// This should NEVER check dependencies - only that the process is running
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness Probe - checks if the application is ready to serve traffic
	readyHandler := func(c *gin.Context) {
		count, err := store.Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "connected",
			"sessions": count,
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Chat turn endpoint
	router.POST("/webhook", webhookHandler.Handle)

	// Prometheus metrics endpoint, optionally behind basic auth
	metricsHandler := gin.WrapH(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	if cfg.Metrics.AuthEnabled {
		authorized := router.Group("/", gin.BasicAuth(gin.Accounts{
			cfg.Metrics.Username: cfg.Metrics.Password,
		}))
		authorized.GET("/metrics", metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}
}
