// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "LEAVEBOT_PORT"
	EnvLogLevel        = "LEAVEBOT_LOG_LEVEL"
	EnvShutdownTimeout = "LEAVEBOT_SHUTDOWN_TIMEOUT"

	// Data
	EnvDataDir = "LEAVEBOT_DATA_DIR"

	// Webhook
	EnvWebhookTimeout = "LEAVEBOT_WEBHOOK_TIMEOUT"

	// Rate Limits
	EnvGlobalRateRPS     = "LEAVEBOT_GLOBAL_RATE_RPS"
	EnvSessionRateBurst  = "LEAVEBOT_SESSION_RATE_BURST"
	EnvSessionRateRefill = "LEAVEBOT_SESSION_RATE_REFILL"

	// LLM Feature
	EnvLLMPrimaryProvider   = "LEAVEBOT_LLM_PRIMARY_PROVIDER"
	EnvLLMFallbackProvider  = "LEAVEBOT_LLM_FALLBACK_PROVIDER"
	EnvGeminiAPIKey         = "LEAVEBOT_GEMINI_API_KEY"
	EnvOpenAIAPIKey         = "LEAVEBOT_OPENAI_API_KEY"
	EnvOpenAIBaseURL        = "LEAVEBOT_OPENAI_BASE_URL"
	EnvGeminiRouterModel    = "LEAVEBOT_GEMINI_ROUTER_MODEL"
	EnvGeminiExtractorModel = "LEAVEBOT_GEMINI_EXTRACTOR_MODEL"
	EnvGeminiResponderModel = "LEAVEBOT_GEMINI_RESPONDER_MODEL"
	EnvOpenAIRouterModel    = "LEAVEBOT_OPENAI_ROUTER_MODEL"
	EnvOpenAIExtractorModel = "LEAVEBOT_OPENAI_EXTRACTOR_MODEL"
	EnvOpenAIResponderModel = "LEAVEBOT_OPENAI_RESPONDER_MODEL"

	// HRMS (Required)
	EnvHRMSBaseURL    = "LEAVEBOT_HRMS_BASE_URL"
	EnvHRMSUsername   = "LEAVEBOT_HRMS_USERNAME"
	EnvHRMSPassword   = "LEAVEBOT_HRMS_PASSWORD"
	EnvHRMSTimeout    = "LEAVEBOT_HRMS_TIMEOUT"
	EnvHRMSMaxRetries = "LEAVEBOT_HRMS_MAX_RETRIES"

	// Calendar
	EnvHolidays = "LEAVEBOT_HOLIDAYS"

	// Archive Feature
	EnvArchiveEnabled         = "LEAVEBOT_ARCHIVE_ENABLED"
	EnvArchiveEndpoint        = "LEAVEBOT_ARCHIVE_ENDPOINT"
	EnvArchiveAccessKeyID     = "LEAVEBOT_ARCHIVE_ACCESS_KEY_ID"
	EnvArchiveSecretAccessKey = "LEAVEBOT_ARCHIVE_SECRET_ACCESS_KEY"
	EnvArchiveBucketName      = "LEAVEBOT_ARCHIVE_BUCKET_NAME"
	EnvArchivePrefix          = "LEAVEBOT_ARCHIVE_PREFIX"

	// Sentry Feature
	EnvSentryEnabled          = "LEAVEBOT_SENTRY_ENABLED"
	EnvSentryDSN              = "LEAVEBOT_SENTRY_DSN"
	EnvSentryEnvironment      = "LEAVEBOT_SENTRY_ENVIRONMENT"
	EnvSentryRelease          = "LEAVEBOT_SENTRY_RELEASE"
	EnvSentrySampleRate       = "LEAVEBOT_SENTRY_SAMPLE_RATE"
	EnvSentryTracesSampleRate = "LEAVEBOT_SENTRY_TRACES_SAMPLE_RATE"

	// Metrics Auth Feature
	EnvMetricsAuthEnabled = "LEAVEBOT_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "LEAVEBOT_METRICS_USERNAME"
	EnvMetricsPassword    = "LEAVEBOT_METRICS_PASSWORD"
)
