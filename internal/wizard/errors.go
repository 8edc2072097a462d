package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned while another import, analysis, payment or
	// tailoring is in flight.
	ErrBusy = errors.New("another operation is in progress")
	// ErrPrecondition is returned when the data a transition needs is missing.
	ErrPrecondition = errors.New("precondition not met")
	// ErrInvalidTransition is returned when an action is not available on the current step.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrNoResult is returned when an export or outreach asset does not exist yet.
	ErrNoResult = errors.New("no tailored documents")
)

func invalidTransition(action string, from Step) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, from)
}

func precondition(msg string) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, msg)
}
