package domain

import (
	"fmt"

	"github.com/google/uuid"
)

type SeatCategory string

const (
	SeatRegular SeatCategory = "REGULAR"
	SeatPremium SeatCategory = "PREMIUM"
	SeatVIP     SeatCategory = "VIP"
)

func (c SeatCategory) Valid() bool {
	switch c {
	case SeatRegular, SeatPremium, SeatVIP:
		return true
	}
	return false
}

// SeatKey is the unit of mutual exclusion: one seat number on one show.
func SeatKey(showID uuid.UUID, seatNumber string) string {
	return fmt.Sprintf("lock:show:%s:seat:%s", showID, seatNumber)
}

// SeatKeys maps seat numbers of a show to their lock keys.
func SeatKeys(showID uuid.UUID, seatNumbers []string) []string {
	keys := make([]string, 0, len(seatNumbers))
	for _, n := range seatNumbers {
		keys = append(keys, SeatKey(showID, n))
	}
	return keys
}
