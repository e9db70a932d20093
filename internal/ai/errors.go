package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when no API key is set
	ErrNotConfigured = errors.New("AI service is not configured")

	errPermanent = errors.New("permanent")
)

// Error is returned when a generation step fails after its retries, so the
// caller can tell which step failed and why
type Error struct {
	Op       string
	Attempts int
	Wrapped  error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s failed after %d attempt(s): %v", e.Op, e.Attempts, e.Wrapped)
	}
	return fmt.Sprintf("%s failed after %d attempt(s)", e.Op, e.Attempts)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// statusError is a non-OK HTTP answer from the API
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("gemini returned status %d: %s", e.code, e.body)
}

// Is marks client errors other than 429 as permanent
func (e *statusError) Is(target error) bool {
	return target == errPermanent && e.code >= 400 && e.code < 500 && e.code != 429
}
