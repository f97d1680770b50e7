package model

import "errors"

var (
	// ErrInvalidTransition is returned when an action is not allowed for the
	// resolution scope.
	ErrInvalidTransition = errors.New("invalid conflict resolution transition")

	// ErrResolutionClosed is returned when acting on a resolution that has
	// already reached a terminal state.
	ErrResolutionClosed = errors.New("conflict resolution already completed")
)
