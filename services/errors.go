// services/errors.go
package services

import "errors"

// Sentinel errors let controllers tell "pick another slot" apart from
// "fix your input" and from plain storage failures.
var (
	ErrNotFound         = errors.New("record not found")
	ErrSlotConflict     = errors.New("time slot is no longer available")
	ErrFacilityConflict = errors.New("facility is no longer available for the requested window")
	ErrSlotHeld         = errors.New("another booking for this slot is in progress, try again")
)

// DeniedError carries a policy denial across the service boundary. It
// is expected control flow: controllers unwrap it into a user-facing
// message, never a 500.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return e.Reason
}

// Denied wraps a reason into a DeniedError.
func Denied(reason string) error {
	return &DeniedError{Reason: reason}
}
