package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/srgjo27/showtime_booking/internal/core/domain"
)

type ChargeRequest struct {
	BookingID   uuid.UUID
	UserID      uuid.UUID
	AmountCents int64
	Method      domain.PaymentMethod
}

// PaymentProcessor takes the money for a booking. It is called inside the
// booking transaction, so a failure undoes the booking as well.
type PaymentProcessor interface {
	Charge(ctx context.Context, req ChargeRequest) (*domain.Payment, error)
}

// CacheInvalidator evicts cached reads. Best effort.
type CacheInvalidator interface {
	Evict(ctx context.Context, keys ...string) error
}

// EventPublisher emits booking lifecycle events. Best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.BookingEvent) error
}
