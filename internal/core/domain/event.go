package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingEventType string

const (
	EventBookingConfirmed BookingEventType = "booking.confirmed"
	EventBookingModified  BookingEventType = "booking.modified"
	EventBookingCancelled BookingEventType = "booking.cancelled"
)

// BookingEvent is emitted after a booking mutation has been committed.
type BookingEvent struct {
	Type             BookingEventType `json:"type"`
	BookingID        uuid.UUID        `json:"booking_id"`
	UserID           uuid.UUID        `json:"user_id"`
	ShowID           uuid.UUID        `json:"show_id"`
	SeatNumbers      []string         `json:"seat_numbers"`
	TotalAmountCents int64            `json:"total_amount_cents"`
	Status           BookingStatus    `json:"status"`
	OccurredAt       time.Time        `json:"occurred_at"`
}

func NewBookingEvent(t BookingEventType, b *Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:             t,
		BookingID:        b.ID,
		UserID:           b.UserID,
		ShowID:           b.ShowID,
		SeatNumbers:      b.SeatNumbers(),
		TotalAmountCents: b.TotalAmountCents,
		Status:           b.Status,
		OccurredAt:       at,
	}
}
