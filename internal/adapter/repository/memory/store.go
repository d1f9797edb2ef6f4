// Package memory keeps shows, bookings, promo codes and payments in process
// memory. It implements every repository port and ports.Transactor.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/srgjo27/showtime_booking/internal/core/domain"
)

type txKey struct{ s *Store }

// Store serialises all access behind one mutex. A transaction holds it for
// its whole duration and restores a snapshot when it fails.
type Store struct {
	mu       sync.Mutex
	shows    map[uuid.UUID]domain.Show
	promos   map[uuid.UUID]domain.PromoCode
	bookings map[uuid.UUID]*domain.Booking
	payments map[uuid.UUID]domain.Payment
}

func NewStore() *Store {
	return &Store{
		shows:    make(map[uuid.UUID]domain.Show),
		promos:   make(map[uuid.UUID]domain.PromoCode),
		bookings: make(map[uuid.UUID]*domain.Booking),
		payments: make(map[uuid.UUID]domain.Payment),
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bookings, payments := s.snapshot()
	committed := false
	defer func() {
		if !committed {
			s.bookings, s.payments = bookings, payments
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{s}, true)); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{s}).(bool)
	return v
}

// lock takes the store mutex unless ctx already runs inside a transaction of
// this store.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) snapshot() (map[uuid.UUID]*domain.Booking, map[uuid.UUID]domain.Payment) {
	bookings := make(map[uuid.UUID]*domain.Booking, len(s.bookings))
	for id, b := range s.bookings {
		bookings[id] = cloneBooking(b)
	}
	payments := make(map[uuid.UUID]domain.Payment, len(s.payments))
	for id, p := range s.payments {
		payments[id] = p
	}
	return bookings, payments
}

func (s *Store) Shows() *ShowRepository {
	return &ShowRepository{s: s}
}

func (s *Store) Bookings() *BookingRepository {
	return &BookingRepository{s: s}
}

func (s *Store) PromoCodes() *PromoCodeRepository {
	return &PromoCodeRepository{s: s}
}

func (s *Store) Payments() *PaymentRepository {
	return &PaymentRepository{s: s}
}

type ShowRepository struct {
	s *Store
}

func (r *ShowRepository) GetByID(ctx context.Context, showID uuid.UUID) (*domain.Show, error) {
	defer r.s.lock(ctx)()

	show, ok := r.s.shows[showID]
	if !ok {
		return nil, domain.ErrShowNotFound
	}
	return &show, nil
}

func (r *ShowRepository) Create(ctx context.Context, show *domain.Show) error {
	defer r.s.lock(ctx)()

	r.s.shows[show.ID] = *show
	return nil
}

type PromoCodeRepository struct {
	s *Store
}

func (r *PromoCodeRepository) GetByID(ctx context.Context, promoID uuid.UUID) (*domain.PromoCode, error) {
	defer r.s.lock(ctx)()

	promo, ok := r.s.promos[promoID]
	if !ok {
		return nil, domain.ErrPromoNotFound
	}
	return &promo, nil
}

func (r *PromoCodeRepository) Create(ctx context.Context, promo *domain.PromoCode) error {
	defer r.s.lock(ctx)()

	r.s.promos[promo.ID] = *promo
	return nil
}

type PaymentRepository struct {
	s *Store
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	defer r.s.lock(ctx)()

	r.s.payments[payment.ID] = *payment
	return nil
}

// ByBooking returns the payments recorded for a booking.
func (r *PaymentRepository) ByBooking(ctx context.Context, bookingID uuid.UUID) []domain.Payment {
	defer r.s.lock(ctx)()

	var out []domain.Payment
	for _, p := range r.s.payments {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	return out
}

type BookingRepository struct {
	s *Store
}

func (r *BookingRepository) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	defer r.s.lock(ctx)()

	r.s.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	defer r.s.lock(ctx)()

	b, ok := r.s.bookings[bookingID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, error) {
	defer r.s.lock(ctx)()

	var out []domain.Booking
	for _, b := range r.s.bookings {
		if b.UserID == userID {
			out = append(out, *cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return []domain.Booking{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *BookingRepository) ReplaceSeats(ctx context.Context, booking *domain.Booking) error {
	defer r.s.lock(ctx)()

	b, ok := r.s.bookings[booking.ID]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.Seats = slices.Clone(booking.Seats)
	b.PromoCodeID = clonePromoID(booking.PromoCodeID)
	b.DiscountCents = booking.DiscountCents
	b.TotalAmountCents = booking.TotalAmountCents
	b.UpdatedAt = booking.UpdatedAt
	return nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) error {
	defer r.s.lock(ctx)()

	b, ok := r.s.bookings[bookingID]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *BookingRepository) UnavailableSeats(ctx context.Context, showID uuid.UUID, excludeBookingID *uuid.UUID) ([]string, error) {
	defer r.s.lock(ctx)()

	seats := []string{}
	for _, b := range r.s.bookings {
		if b.ShowID != showID || b.IsCancelled() {
			continue
		}
		if excludeBookingID != nil && b.ID == *excludeBookingID {
			continue
		}
		seats = append(seats, b.SeatNumbers()...)
	}
	sort.Strings(seats)
	return seats, nil
}

func cloneBooking(b *domain.Booking) *domain.Booking {
	c := *b
	c.Seats = slices.Clone(b.Seats)
	c.PromoCodeID = clonePromoID(b.PromoCodeID)
	return &c
}

func clonePromoID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
