package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorAction
	}{
		{"nil error", nil, ActionFail},
		{"context canceled", context.Canceled, ActionFail},
		{"context deadline", context.DeadlineExceeded, ActionRetry},
		{"wrapped context canceled", fmt.Errorf("call: %w", context.Canceled), ActionFail},

		// Quota → fallback
		{"quota exceeded", errors.New("quota exceeded for this project"), ActionFallback},
		{"daily limit", errors.New("daily limit reached"), ActionFallback},
		{"billing", errors.New("billing account issue"), ActionFallback},

		// Transient → retry
		{"rate limit", errors.New("rate limit exceeded, slow down"), ActionRetry},
		{"429 literal", errors.New("received 429 from upstream"), ActionRetry},
		{"503", errors.New("503 service unavailable"), ActionRetry},
		{"overloaded", errors.New("model is overloaded"), ActionRetry},
		{"timeout", errors.New("request timeout"), ActionRetry},
		{"connection", errors.New("connection refused"), ActionRetry},
		{"unknown error", errors.New("something unexpected"), ActionRetry},

		// Permanent → fail
		{"bad request", errors.New("400 bad request"), ActionFail},
		{"unauthorized", errors.New("invalid api key"), ActionFail},
		{"forbidden", errors.New("403 forbidden"), ActionFail},
		{"not found", errors.New("model not found"), ActionFail},

		// Status code via APIError wins over message text
		{"APIError 500", WrapError(errors.New("boom"), ProviderGemini, 500), ActionRetry},
		{"APIError 429", WrapError(errors.New("boom"), ProviderOpenAI, 429), ActionRetry},
		{"APIError 400", WrapError(errors.New("boom"), ProviderOpenAI, 400), ActionFail},
		{"APIError 404", WrapError(errors.New("boom"), ProviderGemini, 404), ActionFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorActionString(t *testing.T) {
	tests := []struct {
		action ErrorAction
		want   string
	}{
		{ActionRetry, "retry"},
		{ActionFallback, "fallback"},
		{ActionFail, "fail"},
		{ErrorAction(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestAPIError(t *testing.T) {
	cause := errors.New("boom")
	err := WrapError(cause, ProviderGemini, 503)

	if !errors.Is(err, cause) {
		t.Error("APIError must unwrap to cause")
	}
	if err.Error() != "boom (status: 503)" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	noStatus := WrapError(cause, ProviderGemini, 0)
	if noStatus.Error() != "boom" {
		t.Errorf("unexpected message: %q", noStatus.Error())
	}

	if WrapError(nil, ProviderGemini, 500) != nil {
		t.Error("wrapping nil must return nil")
	}
}
