// Package llm provides the language-model boundary for the dialog engine.
// This file contains the provider-fallback Chatter decorator.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/conneqt/leavebot-go/internal/config"
)

// FallbackChatter tries a primary Chatter with retry, then a secondary
// one when the primary is exhausted or reports a fallback-worthy error
// (e.g. quota). The secondary may be nil, in which case only the primary
// is used. It implements the Chatter interface.
type FallbackChatter struct {
	primary   Chatter
	secondary Chatter
	retry     RetryConfig

	// OnRetry is invoked before each retry attempt (for metrics).
	OnRetry func(provider Provider, attempt int, err error)
	// OnFallback is invoked when the secondary provider takes over.
	OnFallback func(from, to Provider, err error)
}

// NewFallbackChatter creates a FallbackChatter. secondary may be nil.
func NewFallbackChatter(primary, secondary Chatter, retry RetryConfig) *FallbackChatter {
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig()
	}
	return &FallbackChatter{
		primary:   primary,
		secondary: secondary,
		retry:     retry,
	}
}

// Chat tries the primary provider with retry, falling back to the
// secondary on failure.
func (f *FallbackChatter) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	resp, primaryErr := f.chatWith(ctx, f.primary, req)
	if primaryErr == nil {
		return resp, nil
	}

	// Context errors are not recoverable by switching providers.
	if ctx.Err() != nil {
		return nil, primaryErr
	}

	if f.secondary == nil {
		return nil, primaryErr
	}

	slog.WarnContext(ctx, "falling back to secondary LLM provider",
		"from", f.primary.Provider(),
		"to", f.secondary.Provider(),
		"error", primaryErr)
	if f.OnFallback != nil {
		f.OnFallback(f.primary.Provider(), f.secondary.Provider(), primaryErr)
	}

	resp, secondaryErr := f.chatWith(ctx, f.secondary, req)
	if secondaryErr == nil {
		return resp, nil
	}
	return nil, fmt.Errorf("all providers failed: primary: %w; secondary: %v", primaryErr, secondaryErr)
}

// chatWith runs one provider with the retry policy.
func (f *FallbackChatter) chatWith(ctx context.Context, chatter Chatter, req ChatRequest) (*ChatResponse, error) {
	var resp *ChatResponse
	err := WithRetry(ctx, f.retry, func(attempt int, err error) {
		slog.DebugContext(ctx, "retrying LLM call",
			"provider", chatter.Provider(),
			"attempt", attempt,
			"error", err)
		if f.OnRetry != nil {
			f.OnRetry(chatter.Provider(), attempt, err)
		}
	}, func() error {
		// Each attempt gets its own deadline so one hung call cannot
		// consume the whole turn budget.
		callCtx, cancel := context.WithTimeout(ctx, config.LLMRequest)
		defer cancel()

		var err error
		resp, err = chatter.Chat(callCtx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Provider returns the primary provider type.
func (f *FallbackChatter) Provider() Provider {
	return f.primary.Provider()
}

// Close releases both underlying chatters.
func (f *FallbackChatter) Close() error {
	err := f.primary.Close()
	if f.secondary != nil {
		if serr := f.secondary.Close(); err == nil {
			err = serr
		}
	}
	return err
}
