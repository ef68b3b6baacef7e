// Package llm provides the language-model boundary for the dialog engine.
// This file contains shared types, interfaces, and configuration.
//
// Architecture:
//   - Gemini: Uses google.golang.org/genai (official SDK)
//   - OpenAI-compatible endpoints: Uses github.com/openai/openai-go/v3
//     (works against OpenAI itself or any compatible inference provider
//     via a custom base URL)
//
// Fallback Strategy (2-layer):
// 1. Retry: Same provider retried with exponential backoff on transient errors
// 2. Provider Fallback: Secondary provider tried when the primary is exhausted
package llm

import (
	"context"
	"time"
)

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderGemini represents Google's Gemini API (non-OpenAI-compatible).
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI represents an OpenAI-compatible API endpoint.
	ProviderOpenAI Provider = "openai"
)

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// Kind identifies which dialog role a chatter serves. Each kind may use
// a different model; the kind is also the metrics label for LLM calls.
type Kind string

const (
	// KindRouter classifies the user turn into a dialog action.
	KindRouter Kind = "router"
	// KindExtractor pulls structured leave-request fields out of a turn.
	KindExtractor Kind = "extractor"
	// KindResponder generates user-facing text (prompts, confirmations,
	// summaries, date interpretation, policy answers).
	KindResponder Kind = "responder"
)

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks a message written by the employee.
	RoleUser Role = "user"
	// RoleBot marks a message written by the assistant.
	RoleBot Role = "bot"
)

// Message is a single conversation history entry.
type Message struct {
	Role Role
	Text string
}

// ChatRequest is one call to a language model.
type ChatRequest struct {
	// Preamble is the system instruction framing the task.
	Preamble string

	// History is the prior conversation, oldest first. May be empty.
	History []Message

	// Message is the current user turn.
	Message string

	// Documents are grounding texts (e.g. leave policy documents)
	// appended to the system instruction.
	Documents []string

	// MaxTokens caps the response length. Zero means provider default.
	MaxTokens int

	// Temperature controls sampling randomness. Classification and
	// extraction use 0 for determinism.
	Temperature float64
}

// ChatResponse is the model's reply.
type ChatResponse struct {
	Text string
}

// Chatter is the minimal model-call interface the dialog engine depends on.
type Chatter interface {
	// Chat sends one request and returns the model's text response.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	// Provider returns the provider type for metrics.
	Provider() Provider
	// Close releases any resources held by the chatter.
	Close() error
}

// RetryConfig defines retry behavior for LLM API calls.
// Uses AWS-recommended Full Jitter exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 2 (1 initial + 1 retry)
	MaxAttempts int

	// InitialDelay is the base delay before first retry.
	// Default: 500ms
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	// Default: 3s
	MaxDelay time.Duration
}

// Retry configuration defaults
const (
	DefaultMaxRetryAttempts  = 2
	DefaultInitialRetryDelay = 500 * time.Millisecond
	DefaultMaxRetryDelay     = 3 * time.Second
)

// DefaultRetryConfig returns the standard retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultMaxRetryAttempts,
		InitialDelay: DefaultInitialRetryDelay,
		MaxDelay:     DefaultMaxRetryDelay,
	}
}

// Default model names per provider and kind. Routing is a short
// classification so it takes the cheaper model; extraction and response
// generation need the stronger one.
var (
	DefaultGeminiModels = map[Kind]string{
		KindRouter:    "gemini-2.5-flash-lite",
		KindExtractor: "gemini-2.5-flash",
		KindResponder: "gemini-2.5-flash",
	}

	DefaultOpenAIModels = map[Kind]string{
		KindRouter:    "gpt-4o-mini",
		KindExtractor: "gpt-4o-mini",
		KindResponder: "gpt-4o-mini",
	}
)

// ProviderConfig holds configuration for a single LLM provider.
type ProviderConfig struct {
	// APIKey is the API key for the provider.
	APIKey string

	// BaseURL overrides the API endpoint (OpenAI-compatible providers
	// only; ignored for Gemini).
	BaseURL string

	// Models maps each kind to a model name. Missing kinds use the
	// provider defaults.
	Models map[Kind]string
}

// Model returns the configured model for a kind, falling back to the
// provider default.
func (c *ProviderConfig) Model(provider Provider, kind Kind) string {
	if m, ok := c.Models[kind]; ok && m != "" {
		return m
	}
	if provider == ProviderGemini {
		return DefaultGeminiModels[kind]
	}
	return DefaultOpenAIModels[kind]
}
