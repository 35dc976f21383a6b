package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a state transition is not allowed
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state is not valid
	ErrInvalidState = errors.New("invalid state")

	// ErrUnknownTrigger is returned for decisions without a trigger
	ErrUnknownTrigger = errors.New("unknown trigger")
)
