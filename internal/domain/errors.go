package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for the orchestration core. Callers classify with
// errors.Is; the HTTP layer maps each class to a stable code.
var (
	// ErrValidation is returned for malformed input (out-of-range
	// coordinates, missing ids) before any external call is made.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when the requested transition is not legal
	// from the rental's current state: an active rental already exists on
	// Start, or the rental is already terminal on End/Cancel/ForceEnd.
	ErrConflict = errors.New("conflicting rental state")

	// ErrNotFound is returned when no rental matches the request.
	ErrNotFound = errors.New("rental not found")

	// ErrVehicleUnavailable is returned when the vehicle is not in an
	// eligible status for the requested transition.
	ErrVehicleUnavailable = errors.New("vehicle unavailable")

	// ErrDependencyUnavailable is returned when an external call fails
	// fast (open circuit) or times out.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Entity-specific variants.
var (
	ErrActiveRentalExists = fmt.Errorf("%w: user already has an active rental", ErrConflict)
	ErrRentalNotActive    = fmt.Errorf("%w: rental is not active", ErrConflict)
	ErrNoActiveRental     = fmt.Errorf("%w: no active rental for user", ErrNotFound)
)

// ValidationError wraps ErrValidation with a field-level message.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
