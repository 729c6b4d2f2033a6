// Package lifecycle holds the booking status state machine. It is pure: no
// persistence, no clock, just the transition table and its guard.
package lifecycle

import (
	"fmt"

	apperrors "tourbook/pkg/errors"
	"tourbook/pkg/model"
)

// allowed maps each status to the statuses it may move to. A booking must
// pass through confirmed before it can complete; completed and cancelled
// have no outgoing transitions.
var allowed = map[model.BookingStatus][]model.BookingStatus{
	model.StatusDraft:     {model.StatusPending},
	model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusCompleted, model.StatusCancelled},
	model.StatusCompleted: {},
	model.StatusCancelled: {},
}

// Terminal reports whether a status has no outgoing transitions.
func Terminal(status model.BookingStatus) bool {
	return status == model.StatusCompleted || status == model.StatusCancelled
}

// Known reports whether status is part of the lifecycle at all.
func Known(status model.BookingStatus) bool {
	_, ok := allowed[status]
	return ok
}

// CanCancel reports whether a booking in the given status may still be
// cancelled. Deadline checks are the service's concern, not the state machine's.
func CanCancel(status model.BookingStatus) bool {
	return ValidateTransition(status, model.StatusCancelled) == nil
}

// ValidateTransition returns nil when from may move to to, and a descriptive
// conflict error otherwise.
func ValidateTransition(from, to model.BookingStatus) error {
	targets, ok := allowed[from]
	if !ok {
		return apperrors.Conflict(fmt.Sprintf("Unknown booking status %q", from))
	}
	if !Known(to) {
		return apperrors.Conflict(fmt.Sprintf("Unknown booking status %q", to))
	}
	if Terminal(from) {
		return apperrors.Conflict(fmt.Sprintf("Booking status %q is terminal and cannot change", from))
	}
	for _, target := range targets {
		if target == to {
			return nil
		}
	}
	return apperrors.Conflict(fmt.Sprintf("Booking cannot move from %q to %q", from, to))
}
