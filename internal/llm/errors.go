// Package llm provides the language-model boundary for the dialog engine.
// This file contains error classification and handling for retry/fallback logic.
package llm

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// ErrorAction defines the action to take based on error type.
type ErrorAction int

const (
	// ActionRetry indicates the request should be retried with the same provider.
	ActionRetry ErrorAction = iota
	// ActionFallback indicates fallback to another provider should be attempted.
	ActionFallback
	// ActionFail indicates the request should fail immediately (permanent error).
	ActionFail
)

// String returns a human-readable string for the error action.
func (a ErrorAction) String() string {
	switch a {
	case ActionRetry:
		return "retry"
	case ActionFallback:
		return "fallback"
	case ActionFail:
		return "fail"
	default:
		return "unknown"
	}
}

// APIError wraps an error with additional context for retry/fallback decisions.
type APIError struct {
	Err        error
	StatusCode int
	Provider   Provider
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return e.Err.Error() + " (status: " + strconv.Itoa(e.StatusCode) + ")"
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with provider and status code information.
func WrapError(err error, provider Provider, statusCode int) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Err:        err,
		StatusCode: statusCode,
		Provider:   provider,
	}
}

// ClassifyError determines the appropriate action based on the error:
//   - Transient errors (429, 5xx, network) → Retry
//   - Quota exhaustion → Fallback to other provider
//   - Permanent errors (400, 401, 403, 404) → Fail immediately
func ClassifyError(err error) ErrorAction {
	if err == nil {
		return ActionFail
	}

	// Check for context errors first
	if errors.Is(err, context.Canceled) {
		return ActionFail
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ActionRetry
	}

	// Check for wrapped APIError
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		return classifyStatusCode(apiErr.StatusCode)
	}

	// Parse error message for status codes and patterns
	errStr := strings.ToLower(err.Error())

	// Check for quota exhaustion first (more severe, immediate fallback)
	if containsAny(errStr, "quota", "daily limit", "monthly limit", "billing", "quota exceeded") {
		return ActionFallback // Quota exhausted, try other provider
	}

	// Then check for rate limiting (transient, can retry)
	if containsAny(errStr, "rate limit", "too many requests", "resource_exhausted") {
		return ActionRetry // Rate limit, can retry after backoff
	}

	// Check for transient errors (retry)
	if containsAny(errStr, "unavailable", "503", "502", "500", "504",
		"service temporarily unavailable", "internal server error",
		"bad gateway", "gateway timeout", "overloaded", "capacity") {
		return ActionRetry
	}

	// Check for timeout/conflict (retry)
	if containsAny(errStr, "408", "409", "429", "timeout", "deadline", "connection") {
		return ActionRetry
	}

	// Check for permanent errors (fail immediately)
	if containsAny(errStr, "400", "invalid", "bad request", "malformed") {
		return ActionFail
	}
	if containsAny(errStr, "401", "unauthorized", "unauthenticated", "invalid api key") {
		return ActionFail
	}
	if containsAny(errStr, "403", "forbidden", "permission denied") {
		return ActionFail
	}
	if containsAny(errStr, "404", "not found") {
		return ActionFail
	}
	if containsAny(errStr, "422", "unprocessable") {
		return ActionFail
	}

	// Default: retry for unknown errors (conservative approach)
	return ActionRetry
}

// classifyStatusCode determines action based on HTTP status code.
func classifyStatusCode(statusCode int) ErrorAction {
	switch {
	// Retry: rate limit, timeout, server errors
	case statusCode == http.StatusTooManyRequests: // 429
		return ActionRetry
	case statusCode == http.StatusRequestTimeout: // 408
		return ActionRetry
	case statusCode == http.StatusConflict: // 409
		return ActionRetry
	case statusCode >= 500 && statusCode < 600: // 5xx
		return ActionRetry

	// Fail: client errors (except those above)
	case statusCode >= 400 && statusCode < 500:
		return ActionFail

	default:
		return ActionRetry // Unknown, try again
	}
}

// ShouldFallback returns true if the error warrants trying another provider.
func ShouldFallback(err error) bool {
	return ClassifyError(err) == ActionFallback
}

// IsRetryable returns true if the error is transient and can be retried.
func IsRetryable(err error) bool {
	return ClassifyError(err) == ActionRetry
}

// IsPermanent returns true if the error is permanent and should not be retried.
func IsPermanent(err error) bool {
	return ClassifyError(err) == ActionFail
}

// containsAny checks if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
