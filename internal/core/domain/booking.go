package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Booking is one purchase of one or more seats for a single show.
// TotalAmountCents always equals the sum of seat prices minus DiscountCents.
type Booking struct {
	ID               uuid.UUID     `db:"id" json:"id"`
	UserID           uuid.UUID     `db:"user_id" json:"user_id"`
	ShowID           uuid.UUID     `db:"show_id" json:"show_id"`
	PromoCodeID      *uuid.UUID    `db:"promo_code_id" json:"promo_code_id,omitempty"`
	DiscountCents    int64         `db:"discount_cents" json:"discount_cents"`
	TotalAmountCents int64         `db:"total_amount_cents" json:"total_amount_cents"`
	Status           BookingStatus `db:"status" json:"status"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
	Seats            []BookingSeat `db:"-" json:"seats"`
}

type BookingSeat struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	BookingID  uuid.UUID    `db:"booking_id" json:"booking_id"`
	SeatNumber string       `db:"seat_number" json:"seat_number"`
	Category   SeatCategory `db:"category" json:"category"`
	PriceCents int64        `db:"price_cents" json:"price_cents"`
}

func (b *Booking) IsCancelled() bool {
	return b.Status == BookingCancelled
}

func (b *Booking) OwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}

// SeatNumbers returns the booked seat numbers in line-item order.
func (b *Booking) SeatNumbers() []string {
	seats := make([]string, 0, len(b.Seats))
	for _, s := range b.Seats {
		seats = append(seats, s.SeatNumber)
	}
	return seats
}

// SubtotalCents is the undiscounted sum of the seat prices.
func (b *Booking) SubtotalCents() int64 {
	var total int64
	for _, s := range b.Seats {
		total += s.PriceCents
	}
	return total
}

// NewBookingSeats builds one line item per seat number, all at the same price.
func NewBookingSeats(bookingID uuid.UUID, seatNumbers []string, category SeatCategory, priceCents int64) []BookingSeat {
	items := make([]BookingSeat, 0, len(seatNumbers))
	for _, n := range seatNumbers {
		items = append(items, BookingSeat{
			ID:         uuid.New(),
			BookingID:  bookingID,
			SeatNumber: n,
			Category:   category,
			PriceCents: priceCents,
		})
	}
	return items
}
