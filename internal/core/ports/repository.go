package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/srgjo27/showtime_booking/internal/core/domain"
)

// Transactor runs fn as one atomic unit. Repositories called with the
// context passed to fn take part in the same transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ShowRepository interface {
	GetByID(ctx context.Context, showID uuid.UUID) (*domain.Show, error)
}

type BookingRepository interface {
	// CreateBooking inserts the booking header and all of its seats.
	CreateBooking(ctx context.Context, booking *domain.Booking) error
	// GetByID loads the booking with its seats.
	GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, error)
	// ReplaceSeats deletes every current seat of the booking and writes the
	// new set together with the recomputed amounts.
	ReplaceSeats(ctx context.Context, booking *domain.Booking) error
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) error
	// UnavailableSeats returns the seat numbers attached to non-cancelled
	// bookings of the show, leaving out excludeBookingID when it is set.
	UnavailableSeats(ctx context.Context, showID uuid.UUID, excludeBookingID *uuid.UUID) ([]string, error)
}

type PromoCodeRepository interface {
	GetByID(ctx context.Context, promoID uuid.UUID) (*domain.PromoCode, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
}
