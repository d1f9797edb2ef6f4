package services

import (
	"fmt"

	"github.com/google/uuid"
)

func UserBookingsCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("bookings:user:%s", userID)
}

func BookingCacheKey(bookingID uuid.UUID) string {
	return fmt.Sprintf("booking:%s", bookingID)
}

func ShowSeatsCacheKey(showID uuid.UUID) string {
	return fmt.Sprintf("seats:%s", showID)
}
