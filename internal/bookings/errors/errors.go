package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrCustomerNotFound = errors.New("customer not found")

	// ErrLockHeld means another transaction currently owns the tour date
	// lock. Callers retry acquisition until their wait budget runs out.
	ErrLockHeld = errors.New("tour date lock held by another request")

	ErrCapacityExceeded = errors.New("daily capacity exceeded for tour date")
)
