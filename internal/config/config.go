// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the server, dialog engine, LLM providers, and the HRMS boundary.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir string // Data directory for the SQLite session store

	// Webhook Configuration
	WebhookTimeout time.Duration // Timeout for processing a single user turn

	// Rate Limits (Token Bucket Algorithm)
	GlobalRateLimitRPS     float64 // Global rate limit in requests per second (default: 100)
	SessionRateLimitBurst  float64 // Maximum burst tokens per session (default: 10)
	SessionRateLimitRefill float64 // Tokens refilled per second (default: 0.2 = 1 per 5s)

	// Calendar Configuration
	Holidays []string // Company holidays as YYYY-MM-DD, excluded from working days

	// Feature Configurations (embedded)
	LLM     LLMConfig
	HRMS    HRMSConfig
	Archive ArchiveConfig
	Sentry  SentryConfig
	Metrics MetricsConfig
}

// LLMConfig holds language-model provider configuration.
// At least one provider API key is required; when both are set the
// fallback provider takes over on non-retryable primary failures.
type LLMConfig struct {
	PrimaryProvider  string // "gemini" or "openai" (default: "gemini")
	FallbackProvider string // "gemini" or "openai" (default: "openai")

	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string // OpenAI-compatible endpoint (Groq, Cerebras, self-hosted)

	// Model overrides (empty = defaults from the llm package)
	GeminiRouterModel    string
	GeminiExtractorModel string
	GeminiResponderModel string
	OpenAIRouterModel    string
	OpenAIExtractorModel string
	OpenAIResponderModel string
}

// HRMSConfig holds the HR system REST boundary configuration.
type HRMSConfig struct {
	BaseURL    string // e.g. https://hcm.example.com/hcmRestApi/resources/11.13.18.05
	Username   string // Basic auth username for the integration user
	Password   string // Basic auth password
	Timeout    time.Duration
	MaxRetries int
}

// ArchiveConfig holds completed-conversation archival configuration.
// Disabled unless Enabled is true and all fields are set.
type ArchiveConfig struct {
	Enabled         bool
	Endpoint        string // S3-compatible endpoint URL
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Prefix          string // Object key prefix (default: "transcripts")
}

// SentryConfig holds error tracking configuration.
type SentryConfig struct {
	Enabled          bool
	DSN              string
	Environment      string
	Release          string
	SampleRate       float64
	TracesSampleRate float64
}

// MetricsConfig holds /metrics endpoint protection configuration.
type MetricsConfig struct {
	AuthEnabled bool
	Username    string // default: "prometheus"
	Password    string
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// Server Configuration
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),

		// Data Configuration
		DataDir: getEnv(EnvDataDir, getDefaultDataDir()),

		// Webhook Configuration
		WebhookTimeout: getDurationEnv(EnvWebhookTimeout, WebhookProcessing),

		// Rate Limits
		GlobalRateLimitRPS:     getFloatEnv(EnvGlobalRateRPS, 100.0),
		SessionRateLimitBurst:  getFloatEnv(EnvSessionRateBurst, 10.0),
		SessionRateLimitRefill: getFloatEnv(EnvSessionRateRefill, 0.2), // 1 per 5s

		// Calendar Configuration
		Holidays: getListEnv(EnvHolidays),

		// LLM Configuration
		LLM: LLMConfig{
			PrimaryProvider:  getEnv(EnvLLMPrimaryProvider, "gemini"),
			FallbackProvider: getEnv(EnvLLMFallbackProvider, "openai"),

			GeminiAPIKey:  getEnv(EnvGeminiAPIKey, ""),
			OpenAIAPIKey:  getEnv(EnvOpenAIAPIKey, ""),
			OpenAIBaseURL: getEnv(EnvOpenAIBaseURL, ""),

			GeminiRouterModel:    getEnv(EnvGeminiRouterModel, ""),
			GeminiExtractorModel: getEnv(EnvGeminiExtractorModel, ""),
			GeminiResponderModel: getEnv(EnvGeminiResponderModel, ""),
			OpenAIRouterModel:    getEnv(EnvOpenAIRouterModel, ""),
			OpenAIExtractorModel: getEnv(EnvOpenAIExtractorModel, ""),
			OpenAIResponderModel: getEnv(EnvOpenAIResponderModel, ""),
		},

		// HRMS Configuration
		HRMS: HRMSConfig{
			BaseURL:    getEnv(EnvHRMSBaseURL, ""),
			Username:   getEnv(EnvHRMSUsername, ""),
			Password:   getEnv(EnvHRMSPassword, ""),
			Timeout:    getDurationEnv(EnvHRMSTimeout, HRMSRequest),
			MaxRetries: getIntEnv(EnvHRMSMaxRetries, 3),
		},

		// Archive Configuration
		Archive: ArchiveConfig{
			Enabled:         getBoolEnv(EnvArchiveEnabled, false),
			Endpoint:        getEnv(EnvArchiveEndpoint, ""),
			AccessKeyID:     getEnv(EnvArchiveAccessKeyID, ""),
			SecretAccessKey: getEnv(EnvArchiveSecretAccessKey, ""),
			BucketName:      getEnv(EnvArchiveBucketName, ""),
			Prefix:          getEnv(EnvArchivePrefix, "transcripts"),
		},

		// Sentry Configuration
		Sentry: SentryConfig{
			Enabled:          getBoolEnv(EnvSentryEnabled, false),
			DSN:              getEnv(EnvSentryDSN, ""),
			Environment:      getEnv(EnvSentryEnvironment, "production"),
			Release:          getEnv(EnvSentryRelease, ""),
			SampleRate:       getFloatEnv(EnvSentrySampleRate, 1.0),
			TracesSampleRate: getFloatEnv(EnvSentryTracesSampleRate, 0.1),
		},

		// Metrics Configuration
		Metrics: MetricsConfig{
			AuthEnabled: getBoolEnv(EnvMetricsAuthEnabled, false),
			Username:    getEnv(EnvMetricsUsername, "prometheus"),
			Password:    getEnv(EnvMetricsPassword, ""),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New(EnvPort+" is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New(EnvDataDir+" is required"))
	}
	if c.WebhookTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvWebhookTimeout, c.WebhookTimeout))
	}
	for _, day := range c.Holidays {
		if _, err := time.Parse("2006-01-02", day); err != nil {
			errs = append(errs, fmt.Errorf("%s entry %q is not YYYY-MM-DD", EnvHolidays, day))
		}
	}
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("llm config: %w", err))
	}
	if err := c.HRMS.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("hrms config: %w", err))
	}
	if err := c.Archive.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("archive config: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the LLM provider configuration.
func (c *LLMConfig) Validate() error {
	var errs []error

	if c.GeminiAPIKey == "" && c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("at least one of "+EnvGeminiAPIKey+" and "+EnvOpenAIAPIKey+" is required"))
	}
	for _, p := range []string{c.PrimaryProvider, c.FallbackProvider} {
		if p != "gemini" && p != "openai" {
			errs = append(errs, fmt.Errorf("unknown provider %q (want gemini or openai)", p))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the HRMS boundary configuration.
func (c *HRMSConfig) Validate() error {
	var errs []error

	if c.BaseURL == "" {
		errs = append(errs, errors.New(EnvHRMSBaseURL+" is required"))
	} else if _, err := url.Parse(c.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("%s is not a valid URL: %w", EnvHRMSBaseURL, err))
	}
	if c.Username == "" {
		errs = append(errs, errors.New(EnvHRMSUsername+" is required"))
	}
	if c.Password == "" {
		errs = append(errs, errors.New(EnvHRMSPassword+" is required"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvHRMSTimeout, c.Timeout))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", EnvHRMSMaxRetries, c.MaxRetries))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the archive configuration when the feature is enabled.
func (c *ArchiveConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, errors.New(EnvArchiveEndpoint+" is required when archive is enabled"))
	}
	if c.AccessKeyID == "" {
		errs = append(errs, errors.New(EnvArchiveAccessKeyID+" is required when archive is enabled"))
	}
	if c.SecretAccessKey == "" {
		errs = append(errs, errors.New(EnvArchiveSecretAccessKey+" is required when archive is enabled"))
	}
	if c.BucketName == "" {
		errs = append(errs, errors.New(EnvArchiveBucketName+" is required when archive is enabled"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getListEnv retrieves a comma-separated environment variable as a slice.
// Empty entries are dropped; an unset variable yields nil.
func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite session database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "sessions.db")
}

// HasFallbackProvider returns true if the fallback provider differs from the
// primary and has an API key configured.
func (c *LLMConfig) HasFallbackProvider() bool {
	if c.FallbackProvider == c.PrimaryProvider {
		return false
	}
	switch c.FallbackProvider {
	case "gemini":
		return c.GeminiAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	}
	return false
}
