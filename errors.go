package pinfield

import (
	"errors"
	"fmt"
)

var (
	// ErrRequired is wrapped by *ValidationError when a required answer is empty.
	ErrRequired = errors.New("pinfield: required answer missing")
	// ErrNoLocation is returned when a submission is serialized without a placement.
	ErrNoLocation = errors.New("pinfield: no location selected")
	// ErrNoDraft is returned when submitting without a placed draft.
	ErrNoDraft = errors.New("pinfield: no draft pin")
	// ErrSubmitInFlight is returned when a submission is already running.
	ErrSubmitInFlight = errors.New("pinfield: submission in flight")
	// ErrNoBackend is returned when a network operation runs without a PinBackend.
	ErrNoBackend = errors.New("pinfield: no backend configured")
	// ErrUnknownQuestionType is wrapped when a questionnaire record has an unsupported type.
	ErrUnknownQuestionType = errors.New("pinfield: unknown question type")
	// ErrQuestionKey is returned when a questionnaire record has no key.
	ErrQuestionKey = errors.New("pinfield: question without key")
)

// ValidationError reports the first required question whose answer was empty.
type ValidationError struct {
	Key   string
	Label string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %q: %v", e.Key, ErrRequired)
}

// Unwrap returns ErrRequired.
func (e *ValidationError) Unwrap() error { return ErrRequired }
