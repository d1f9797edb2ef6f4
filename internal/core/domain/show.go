package domain

import (
	"time"

	"github.com/google/uuid"
)

// Show is a scheduled screening. Only PricePerSeatCents matters for booking;
// the movie and screen references are carried for display.
type Show struct {
	ID                uuid.UUID `db:"id" json:"id"`
	MovieID           uuid.UUID `db:"movie_id" json:"movie_id"`
	ScreenID          uuid.UUID `db:"screen_id" json:"screen_id"`
	StartTime         time.Time `db:"start_time" json:"start_time"`
	EndTime           time.Time `db:"end_time" json:"end_time"`
	PricePerSeatCents int64     `db:"price_per_seat_cents" json:"price_per_seat_cents"`
}
