package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition means the requested activity type is not allowed
	// from the lead's current stage. Nothing is written when it is returned.
	ErrInvalidTransition = errors.New("activity not allowed from current stage")

	// ErrMissingLossReason means a lost outcome was submitted without reasons.
	ErrMissingLossReason = errors.New("lost outcome requires at least one loss reason")

	// ErrSubmissionInFlight means another submission for the same lead is
	// still being processed. Callers should retry after it settles.
	ErrSubmissionInFlight = errors.New("another submission for this lead is in flight")
)

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
