package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	// Validation errors
	ErrInvalidRequest       = errors.New("invalid booking request")
	ErrNoSeatsSelected      = errors.New("seat numbers cannot be empty")
	ErrDuplicateSeat        = errors.New("seat numbers must be distinct")
	ErrInvalidShowID        = errors.New("invalid show id")
	ErrInvalidUserID        = errors.New("invalid user id")
	ErrInvalidSeatCategory  = errors.New("invalid seat category")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrShowMismatch         = errors.New("booking belongs to a different show")
	ErrBookingNotModifiable = errors.New("cancelled booking cannot be modified")

	// Not found errors
	ErrShowNotFound    = errors.New("show not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrPromoNotFound   = errors.New("promo code not found")

	// Authorization errors
	ErrForbidden = errors.New("not your booking")

	// Seat errors
	ErrSeatUnavailable = errors.New("seat unavailable")
	ErrSeatLocked      = errors.New("seat is locked by another request")

	// Payment errors
	ErrPaymentFailed = errors.New("payment failed")
)

// SeatUnavailableError lists the requested seats already held by other bookings.
type SeatUnavailableError struct {
	Seats []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats already booked: [%s]", strings.Join(e.Seats, ", "))
}

func (e *SeatUnavailableError) Unwrap() error {
	return ErrSeatUnavailable
}

// ErrorKind is the stable, caller-visible classification of a failure.
type ErrorKind string

const (
	KindValidation      ErrorKind = "VALIDATION"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindForbidden       ErrorKind = "FORBIDDEN"
	KindSeatUnavailable ErrorKind = "SEAT_UNAVAILABLE"
	KindSeatLocked      ErrorKind = "SEAT_LOCKED"
	KindPaymentFailed   ErrorKind = "PAYMENT_FAILED"
	KindInternal        ErrorKind = "INTERNAL"
)

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrNoSeatsSelected) ||
		errors.Is(err, ErrDuplicateSeat) ||
		errors.Is(err, ErrInvalidShowID) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidSeatCategory) ||
		errors.Is(err, ErrInvalidPaymentMethod) ||
		errors.Is(err, ErrShowMismatch) ||
		errors.Is(err, ErrBookingNotModifiable)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrShowNotFound) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrPromoNotFound)
}

// KindOf classifies err. Anything unrecognised is internal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case IsValidationError(err):
		return KindValidation
	case IsNotFoundError(err):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrSeatUnavailable):
		return KindSeatUnavailable
	case errors.Is(err, ErrSeatLocked):
		return KindSeatLocked
	case errors.Is(err, ErrPaymentFailed):
		return KindPaymentFailed
	default:
		return KindInternal
	}
}
