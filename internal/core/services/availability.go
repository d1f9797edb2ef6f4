package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/srgjo27/showtime_booking/internal/core/domain"
	"github.com/srgjo27/showtime_booking/internal/core/ports"
)

// AvailabilityChecker answers which seats of a show are taken by
// non-cancelled bookings. It never locks; callers decide whether a result is
// a fail-fast hint or the authoritative answer.
type AvailabilityChecker struct {
	bookings ports.BookingRepository
}

func NewAvailabilityChecker(bookings ports.BookingRepository) *AvailabilityChecker {
	return &AvailabilityChecker{bookings: bookings}
}

func (a *AvailabilityChecker) UnavailableSeats(ctx context.Context, showID uuid.UUID) ([]string, error) {
	seats, err := a.bookings.UnavailableSeats(ctx, showID, nil)
	if err != nil {
		return nil, fmt.Errorf("load unavailable seats: %w", err)
	}

	seats = lo.Uniq(seats)
	sort.Strings(seats)
	return seats, nil
}

// Conflicts returns the requested seats that are already taken, in request
// order. The seats of excludeBookingID do not count against it.
func (a *AvailabilityChecker) Conflicts(ctx context.Context, showID uuid.UUID, requested []string, excludeBookingID *uuid.UUID) ([]string, error) {
	taken, err := a.bookings.UnavailableSeats(ctx, showID, excludeBookingID)
	if err != nil {
		return nil, fmt.Errorf("load unavailable seats: %w", err)
	}

	takenSet := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		takenSet[s] = struct{}{}
	}

	return lo.Filter(requested, func(seat string, _ int) bool {
		_, ok := takenSet[seat]
		return ok
	}), nil
}

// EnsureAvailable returns a *domain.SeatUnavailableError naming every conflict.
func (a *AvailabilityChecker) EnsureAvailable(ctx context.Context, showID uuid.UUID, requested []string, excludeBookingID *uuid.UUID) error {
	conflicts, err := a.Conflicts(ctx, showID, requested, excludeBookingID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &domain.SeatUnavailableError{Seats: conflicts}
	}
	return nil
}
