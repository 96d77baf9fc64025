package countdown

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCredential = errors.New("unknown credential")
	ErrSchedulerClosed   = errors.New("scheduler is closed")
)

// TransitionError reports an event that is not allowed in the credential's current state,
// e.g. starting a credential that is already running.
type TransitionError struct {
	ID    string
	State State
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("no transition from state '%s' for event '%s' (credential %s)", e.State, e.Event, e.ID)
}

// IsTransitionError reports whether err wraps a *TransitionError.
func IsTransitionError(err error) bool {
	var e *TransitionError
	return errors.As(err, &e)
}
