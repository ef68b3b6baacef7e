// Package main provides the leave-request chatbot server entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/conneqt/leavebot-go/internal/archive"
	"github.com/conneqt/leavebot-go/internal/calendar"
	"github.com/conneqt/leavebot-go/internal/config"
	"github.com/conneqt/leavebot-go/internal/dialog"
	"github.com/conneqt/leavebot-go/internal/hrms"
	"github.com/conneqt/leavebot-go/internal/llm"
	"github.com/conneqt/leavebot-go/internal/logger"
	"github.com/conneqt/leavebot-go/internal/metrics"
	"github.com/conneqt/leavebot-go/internal/sentry"
	"github.com/conneqt/leavebot-go/internal/session"
	"github.com/conneqt/leavebot-go/internal/webhook"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger and route the default slog logger through the
	// context handler so packages logging with slog.*Context pick up
	// session, user and request IDs automatically.
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(slog.New(logger.NewContextHandler(log.Handler())))
	log.Info("Starting leave request bot server")

	// Initialize error tracking (no-op when disabled)
	if err := sentry.Initialize(cfg.Sentry); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, continuing without error tracking")
	} else if sentry.IsEnabled() {
		defer sentry.Flush(2 * time.Second)
		log.Info("Sentry error tracking enabled")
	}

	// Open the session store
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fatal(log, err, "Failed to create data directory")
	}
	store, err := session.NewSQLiteStore(cfg.SQLitePath())
	if err != nil {
		fatal(log, err, "Failed to open session store")
	}
	defer func() { _ = store.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Session store opened")

	// Create metrics
	m := metrics.New()
	log.Info("Metrics initialized")

	// Create one chatter per dialog role. Each may be a different model;
	// all are instrumented and wrapped with provider fallback when a
	// second provider is configured.
	ctx := context.Background()
	chatters := make([]llm.Chatter, 0, 3)
	buildChatter := func(kind llm.Kind) llm.Chatter {
		c, err := newChatter(ctx, cfg.LLM, kind)
		if err != nil {
			fatal(log, err, "Failed to create "+string(kind)+" chatter")
		}
		chatters = append(chatters, c)
		return m.InstrumentChatter(c, kind)
	}
	routerChatter := buildChatter(llm.KindRouter)
	extractorChatter := buildChatter(llm.KindExtractor)
	responderChatter := buildChatter(llm.KindResponder)
	defer func() {
		for _, c := range chatters {
			if err := c.Close(); err != nil {
				log.WithError(err).Warn("Failed to close chatter")
			}
		}
	}()
	log.WithField("primary", cfg.LLM.PrimaryProvider).
		WithField("fallback_enabled", cfg.LLM.HasFallbackProvider()).
		Info("LLM chatters created")

	// Working-day calendar and natural-language date interpreter
	cal := calendar.New(cfg.Holidays)
	interp := calendar.NewInterpreter(responderChatter, cal)

	// HRMS boundary: absence submission and employee profile lookup
	hrmsClient := hrms.NewClient(cfg.HRMS)
	profileClient := hrms.NewProfileClient(cfg.HRMS)
	log.WithField("base_url", cfg.HRMS.BaseURL).Info("HRMS clients created")

	// Transcript archival (optional)
	archiveClient, err := archive.New(ctx, cfg.Archive)
	if err != nil {
		fatal(log, err, "Failed to create archive client")
	}
	if archiveClient != nil {
		log.WithField("bucket", cfg.Archive.BucketName).Info("Transcript archival enabled")
	}

	// Assemble the dialog engine
	engine := dialog.NewEngine(
		store,
		dialog.NewRouter(routerChatter),
		dialog.NewExtractor(extractorChatter, interp, cal, m),
		dialog.NewPrompter(responderChatter),
		dialog.NewConfirmer(routerChatter, hrmsClient, archiveClient, m),
		dialog.WithProfileFetcher(profileClient),
		dialog.WithMetrics(m),
	)
	log.Info("Dialog engine created")

	// Create webhook handler
	webhookHandler := webhook.NewHandler(engine, log,
		webhook.WithConfig(cfg),
		webhook.WithMetrics(m),
	)

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))
	if sentry.IsEnabled() {
		router.Use(sentryMiddleware())
	}

	// Setup routes
	setupRoutes(router, webhookHandler, store, m, cfg)

	// Create HTTP server with timeouts sized for LLM-backed turns
	// See internal/config/timeouts.go for detailed explanations
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.WebhookHTTPRead,
		WriteTimeout: config.WebhookHTTPWrite,
		IdleTimeout:  config.WebhookHTTPIdle,
	}

	// Start background goroutines
	jobCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	// Stale session cleanup goroutine (every 12 hours)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("Panic in session cleanup goroutine")
			}
		}()
		cleanupStaleSessions(jobCtx, store, log)
	}()

	// Active session gauge updater goroutine (every 5 minutes)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("Panic in session metrics goroutine")
			}
		}()
		updateSessionMetrics(jobCtx, store, m, log)
	}()

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal(log, err, "Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Stop webhook handler background goroutines
	webhookHandler.Close()

	// Cancel context to stop background jobs
	cancel()

	// Wait for goroutines to finish (with timeout)
	goDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(goDone)
	}()

	select {
	case <-goDone:
		log.Info("All background goroutines stopped")
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for goroutines to stop")
	}

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown server gracefully, letting in-flight turns complete
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server stopped")
}

// newChatter builds the chatter for one dialog role: the primary
// provider, wrapped with the fallback provider when one is configured.
func newChatter(ctx context.Context, cfg config.LLMConfig, kind llm.Kind) (llm.Chatter, error) {
	primary, err := llm.New(ctx, llm.Provider(cfg.PrimaryProvider), providerConfig(cfg, llm.Provider(cfg.PrimaryProvider)), kind)
	if err != nil {
		return nil, fmt.Errorf("primary provider %s: %w", cfg.PrimaryProvider, err)
	}

	retry := llm.RetryConfig{
		MaxAttempts:  llm.DefaultMaxRetryAttempts,
		InitialDelay: config.LLMRetryInitial,
		MaxDelay:     llm.DefaultMaxRetryDelay,
	}

	if !cfg.HasFallbackProvider() {
		// Still wrapped so single-provider setups get retry and
		// per-call deadlines.
		return llm.NewFallbackChatter(primary, nil, retry), nil
	}

	secondary, err := llm.New(ctx, llm.Provider(cfg.FallbackProvider), providerConfig(cfg, llm.Provider(cfg.FallbackProvider)), kind)
	if err != nil {
		_ = primary.Close()
		return nil, fmt.Errorf("fallback provider %s: %w", cfg.FallbackProvider, err)
	}

	return llm.NewFallbackChatter(primary, secondary, retry), nil
}

// providerConfig maps the flat environment configuration onto one
// provider's llm.ProviderConfig.
func providerConfig(cfg config.LLMConfig, provider llm.Provider) llm.ProviderConfig {
	if provider == llm.ProviderGemini {
		return llm.ProviderConfig{
			APIKey: cfg.GeminiAPIKey,
			Models: map[llm.Kind]string{
				llm.KindRouter:    cfg.GeminiRouterModel,
				llm.KindExtractor: cfg.GeminiExtractorModel,
				llm.KindResponder: cfg.GeminiResponderModel,
			},
		}
	}
	return llm.ProviderConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Models: map[llm.Kind]string{
			llm.KindRouter:    cfg.OpenAIRouterModel,
			llm.KindExtractor: cfg.OpenAIExtractorModel,
			llm.KindResponder: cfg.OpenAIResponderModel,
		},
	}
}

func fatal(log *logger.Logger, err error, msg string) {
	log.WithError(err).Error(msg)
	os.Exit(1)
}
