package engine

import (
	"errors"
	"fmt"
)

// DispatchError reports a thunk that failed after recording its *_FAILURE
// command. The state tree already holds the error when a caller sees this.
type DispatchError struct {
	// Type is the failure command that was dispatched before returning.
	Type Type

	// FlowToken identifies the thunk run.
	FlowToken string

	// Err is the underlying failure.
	Err error
}

func (e *DispatchError) Error() string {
	if e.FlowToken != "" {
		return fmt.Sprintf("%s: %v (flow=%s)", e.Type, e.Err, e.FlowToken)
	}
	return fmt.Sprintf("%s: %v", e.Type, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// IsDispatchError returns true if err wraps a *DispatchError.
func IsDispatchError(err error) bool {
	var de *DispatchError
	return errors.As(err, &de)
}
