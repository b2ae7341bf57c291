package service

import (
	"errors"
	"time"
)

// CancellationWindow is the minimum lead time before a class starts
// within which a booking can still be cancelled.
const CancellationWindow = 3 * time.Hour

// ErrCancellationDeadline is returned when a cancellation is attempted
// within the cancellation window of the class start time.
var ErrCancellationDeadline = errors.New("cannot cancel reservation within 3 hours of the class")

// CancellationAllowed reports whether a booking for a class starting at
// classTimeSlot may still be cancelled at instant now.
func CancellationAllowed(classTimeSlot, now time.Time) bool {
	return classTimeSlot.Sub(now) >= CancellationWindow
}
