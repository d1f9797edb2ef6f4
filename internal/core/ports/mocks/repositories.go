package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/srgjo27/showtime_booking/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type ShowRepository struct {
	mock.Mock
}

func NewShowRepository(t testingT) *ShowRepository {
	m := &ShowRepository{}
	register(&m.Mock, t)
	return m
}

func (_m *ShowRepository) GetByID(ctx context.Context, showID uuid.UUID) (*domain.Show, error) {
	ret := _m.Called(ctx, showID)

	var r0 *domain.Show
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Show)
	}
	return r0, ret.Error(1)
}

type BookingRepository struct {
	mock.Mock
}

func NewBookingRepository(t testingT) *BookingRepository {
	m := &BookingRepository{}
	register(&m.Mock, t)
	return m
}

func (_m *BookingRepository) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	ret := _m.Called(ctx, booking)
	return ret.Error(0)
}

func (_m *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	ret := _m.Called(ctx, bookingID)

	var r0 *domain.Booking
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Booking)
	}
	return r0, ret.Error(1)
}

func (_m *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, error) {
	ret := _m.Called(ctx, userID, limit, offset)

	var r0 []domain.Booking
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Booking)
	}
	return r0, ret.Error(1)
}

func (_m *BookingRepository) ReplaceSeats(ctx context.Context, booking *domain.Booking) error {
	ret := _m.Called(ctx, booking)
	return ret.Error(0)
}

func (_m *BookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) error {
	ret := _m.Called(ctx, bookingID, status)
	return ret.Error(0)
}

func (_m *BookingRepository) UnavailableSeats(ctx context.Context, showID uuid.UUID, excludeBookingID *uuid.UUID) ([]string, error) {
	ret := _m.Called(ctx, showID, excludeBookingID)

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0, ret.Error(1)
}

type PromoCodeRepository struct {
	mock.Mock
}

func NewPromoCodeRepository(t testingT) *PromoCodeRepository {
	m := &PromoCodeRepository{}
	register(&m.Mock, t)
	return m
}

func (_m *PromoCodeRepository) GetByID(ctx context.Context, promoID uuid.UUID) (*domain.PromoCode, error) {
	ret := _m.Called(ctx, promoID)

	var r0 *domain.PromoCode
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.PromoCode)
	}
	return r0, ret.Error(1)
}

type PaymentRepository struct {
	mock.Mock
}

func NewPaymentRepository(t testingT) *PaymentRepository {
	m := &PaymentRepository{}
	register(&m.Mock, t)
	return m
}

func (_m *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	ret := _m.Called(ctx, payment)
	return ret.Error(0)
}
