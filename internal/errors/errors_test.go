package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		checkFn  func(error) bool
		expected bool
	}{
		{
			name:     "ErrNotFound is recognized",
			err:      ErrNotFound,
			checkFn:  IsNotFound,
			expected: true,
		},
		{
			name:     "Wrapped ErrNotFound is recognized",
			err:      fmt.Errorf("session lookup: %w", ErrNotFound),
			checkFn:  IsNotFound,
			expected: true,
		},
		{
			name:     "Different error is not ErrNotFound",
			err:      ErrRateLimitExceeded,
			checkFn:  IsNotFound,
			expected: false,
		},
		{
			name:     "ErrRateLimitExceeded is recognized",
			err:      ErrRateLimitExceeded,
			checkFn:  IsRateLimitExceeded,
			expected: true,
		},
		{
			name:     "ErrInvalidInput is recognized",
			err:      ErrInvalidInput,
			checkFn:  IsInvalidInput,
			expected: true,
		},
		{
			name:     "SubmissionError matches ErrSubmission",
			err:      NewSubmissionError("https://hrms.example.com/absences", 503, errors.New("bad gateway")),
			checkFn:  IsSubmission,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.checkFn(tt.err)
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestSubmissionErrorFormat(t *testing.T) {
	err := NewSubmissionError("https://hrms.example.com/absences", 500, errors.New("boom"))
	want := "submission error (url=https://hrms.example.com/absences, status=500): boom"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	noStatus := NewSubmissionError("https://hrms.example.com/absences", 0, errors.New("dial tcp: timeout"))
	if got := noStatus.Error(); got != "submission error (url=https://hrms.example.com/absences): dial tcp: timeout" {
		t.Errorf("unexpected format: %q", got)
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("leaveType", "unknown leave type")
	if err.Error() != "validation failed on leaveType: unknown leave type" {
		t.Errorf("unexpected format: %q", err.Error())
	}
}
