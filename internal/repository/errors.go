package repository

import "errors"

// Domain errors surfaced to the service and handler layers via errors.Is.
// Anything else returned by repository methods is a store failure.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrClassNotFound   = errors.New("class not found")
	ErrBookingNotFound = errors.New("booking not found")

	// ErrDuplicateEmail is returned when registering an email that already exists
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrDuplicateBooking is returned when a user already holds a booking for the class
	ErrDuplicateBooking = errors.New("user already booked this class")

	// ErrClassFull is returned when a class has no available slots left
	ErrClassFull = errors.New("class is fully booked")

	// ErrNoInvitationsLeft is returned when a user's invitation allowance is exhausted
	ErrNoInvitationsLeft = errors.New("no invitations left")
)
