package tester

import (
	"fmt"

	"github.com/leapstack-labs/leapcheck/pkg/core"
)

// CheckError is the recoverable failure category of a validation run: a
// declared check is malformed or its execution failed. It always carries
// the offending model and a human-readable message set at construction.
//
// Anything the orchestrator catches and reports without aborting the run is
// a CheckError; every other error (for example a connection that cannot be
// acquired) is infrastructure failure and propagates.
type CheckError struct {
	Model   core.ModelID
	Message string
	Err     error // underlying cause, may be nil
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s: %s", e.Model, e.Message)
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

// newCheckError builds a CheckError with a formatted message.
func newCheckError(model core.ModelID, format string, args ...any) *CheckError {
	return &CheckError{Model: model, Message: fmt.Sprintf(format, args...)}
}
