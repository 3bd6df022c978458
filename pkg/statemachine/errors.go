package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("statemachine: from, to and event are required")
	ErrInvalidEvent      = errors.New("statemachine: event is required")
	ErrInvalidState      = errors.New("statemachine: state is required")
	ErrEmptyTable        = errors.New("statemachine: no transitions defined")
)

// TransitionError reports an event that could not move the machine out of State.
// Rejected is set when transitions exist but every guard refused them.
type TransitionError struct {
	State    string
	Event    string
	Rejected bool
}

func (e *TransitionError) Error() string {
	if e.Rejected {
		return fmt.Sprintf("statemachine: %q in state %q rejected by guards", e.Event, e.State)
	}
	return fmt.Sprintf("statemachine: no transition for %q in state %q", e.Event, e.State)
}

// IsNoTransitionAvailableError reports that the table has no row for the state and event.
func IsNoTransitionAvailableError(err error) bool {
	var e *TransitionError
	return errors.As(err, &e) && !e.Rejected
}

// IsTransitionRejectedError reports that guards refused every matching row.
func IsTransitionRejectedError(err error) bool {
	var e *TransitionError
	return errors.As(err, &e) && e.Rejected
}
