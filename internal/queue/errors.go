package queue

import "errors"

var (
	ErrNotFound = errors.New("queued operation not found")

	// ErrInvalidTransition is returned when a status change would move an
	// operation backwards or out of a terminal state.
	ErrInvalidTransition = errors.New("invalid operation status transition")
)
