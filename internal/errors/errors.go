// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrClassification indicates the routing classifier call failed or
	// returned an unrecognized label. Recovered locally by falling back
	// to the prompt action; never surfaced to the user.
	ErrClassification = errors.New("intent classification failed")

	// ErrExtractionParse indicates the extraction response was not valid
	// JSON. Recovered locally as "no fields extracted this turn".
	ErrExtractionParse = errors.New("extraction response not parsable")

	// ErrDateInterpretation indicates the date-query model call failed.
	// Recovered by returning a null interpretation.
	ErrDateInterpretation = errors.New("date interpretation failed")

	// ErrSubmission indicates the HRMS absence submission failed.
	// The request state is retained so the user can retry.
	ErrSubmission = errors.New("leave submission failed")

	// ErrConfiguration indicates a missing or malformed leave-type
	// catalog entry. Fatal for the turn; the handler must re-prompt for
	// leave type rather than operate on an inconsistent schema.
	ErrConfiguration = errors.New("invalid leave configuration")
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimitExceeded reports whether err is or wraps ErrRateLimitExceeded.
func IsRateLimitExceeded(err error) bool {
	return errors.Is(err, ErrRateLimitExceeded)
}

// IsInvalidInput reports whether err is or wraps ErrInvalidInput.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsSubmission reports whether err is or wraps ErrSubmission.
func IsSubmission(err error) bool {
	return errors.Is(err, ErrSubmission)
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// SubmissionError represents HRMS submission failures with context.
type SubmissionError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("submission error (url=%s, status=%d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("submission error (url=%s): %v", e.URL, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrSubmission
}

// Is makes every SubmissionError match the ErrSubmission sentinel.
func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmission
}

// NewSubmissionError creates a new submission error.
func NewSubmissionError(url string, statusCode int, err error) *SubmissionError {
	return &SubmissionError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}
