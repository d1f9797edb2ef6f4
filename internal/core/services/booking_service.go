package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/srgjo27/showtime_booking/internal/core/domain"
	"github.com/srgjo27/showtime_booking/internal/core/ports"
)

type BookingRequest struct {
	ShowID        uuid.UUID            `json:"show_id"`
	SeatNumbers   []string             `json:"seat_numbers"`
	SeatCategory  domain.SeatCategory  `json:"seat_category"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	PromoCodeID   *uuid.UUID           `json:"promo_code_id,omitempty"`
}

type SeatSelectionRequest struct {
	ShowID       uuid.UUID           `json:"show_id"`
	SeatNumbers  []string            `json:"seat_numbers"`
	SeatCategory domain.SeatCategory `json:"seat_category"`
}

// GroupBookingResult is the outcome of one request of a group booking.
type GroupBookingResult struct {
	Booking *domain.Booking
	Err     error
}

// BookingService owns the booking state machine and runs every seat mutation
// through the same protocol: pre-check, lock, re-check, commit, release.
type BookingService struct {
	shows        ports.ShowRepository
	bookings     ports.BookingRepository
	promos       ports.PromoCodeRepository
	tx           ports.Transactor
	payments     ports.PaymentProcessor
	locks        *SeatLockCoordinator
	availability *AvailabilityChecker
	pricing      PromoCalculator
	cache        ports.CacheInvalidator
	events       ports.EventPublisher
	log          *zap.Logger
	now          func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithCacheInvalidator(c ports.CacheInvalidator) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = c
	}
}

func WithEventPublisher(p ports.EventPublisher) BookingServiceOption {
	return func(s *BookingService) {
		s.events = p
	}
}

func WithLogger(l *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewBookingService(
	shows ports.ShowRepository,
	bookings ports.BookingRepository,
	promos ports.PromoCodeRepository,
	tx ports.Transactor,
	payments ports.PaymentProcessor,
	locks *SeatLockCoordinator,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		shows:        shows,
		bookings:     bookings,
		promos:       promos,
		tx:           tx,
		payments:     payments,
		locks:        locks,
		availability: NewAvailabilityChecker(bookings),
		log:          zap.NewNop(),
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BookingService) Book(ctx context.Context, userID uuid.UUID, req BookingRequest) (*domain.Booking, error) {
	s.log.Info("booking request",
		zap.String("user_id", userID.String()),
		zap.String("show_id", req.ShowID.String()),
		zap.Strings("seats", req.SeatNumbers),
	)

	if err := validateBookingRequest(userID, req); err != nil {
		return nil, err
	}

	show, err := s.loadShow(ctx, req.ShowID)
	if err != nil {
		return nil, err
	}

	promo, err := s.loadPromo(ctx, req.PromoCodeID)
	if err != nil {
		return nil, err
	}

	// Fail fast without paying for the locks. Not authoritative.
	if err := s.availability.EnsureAvailable(ctx, show.ID, req.SeatNumbers, nil); err != nil {
		return nil, err
	}

	var booking *domain.Booking
	err = s.locks.WithLocks(ctx, domain.SeatKeys(show.ID, req.SeatNumbers), func(ctx context.Context, held *ScopedLock) error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.availability.EnsureAvailable(ctx, show.ID, req.SeatNumbers, nil); err != nil {
				return err
			}

			b := s.newBooking(userID, show, req, promo)
			if err := s.bookings.CreateBooking(ctx, b); err != nil {
				return fmt.Errorf("persist booking: %w", err)
			}

			if _, err := s.payments.Charge(ctx, ports.ChargeRequest{
				BookingID:   b.ID,
				UserID:      userID,
				AmountCents: b.TotalAmountCents,
				Method:      req.PaymentMethod,
			}); err != nil {
				return err
			}

			if err := held.Verify(ctx); err != nil {
				return err
			}

			booking = b
			return nil
		})
	})
	if err != nil {
		s.logFailure("booking failed", err, zap.String("user_id", userID.String()), zap.String("show_id", show.ID.String()))
		return nil, err
	}

	s.log.Info("booking confirmed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int64("total_amount_cents", booking.TotalAmountCents),
	)
	s.afterCommit(ctx, domain.EventBookingConfirmed, booking)

	return booking, nil
}

// LockSeats proves the seats could be claimed right now: it takes and
// immediately gives back their locks. Nothing is persisted.
func (s *BookingService) LockSeats(ctx context.Context, userID uuid.UUID, req SeatSelectionRequest) error {
	if userID == uuid.Nil {
		return domain.ErrInvalidUserID
	}
	if err := validateSeatSelection(req.ShowID, req.SeatNumbers); err != nil {
		return err
	}

	show, err := s.loadShow(ctx, req.ShowID)
	if err != nil {
		return err
	}

	return s.locks.WithLocks(ctx, domain.SeatKeys(show.ID, req.SeatNumbers), func(context.Context, *ScopedLock) error {
		s.log.Debug("seats lockable",
			zap.String("user_id", userID.String()),
			zap.String("show_id", show.ID.String()),
			zap.Strings("seats", req.SeatNumbers),
		)
		return nil
	})
}

// ModifyBooking replaces the seats of a confirmed booking. An empty seat list
// keeps the current seats and only reprices the booking.
func (s *BookingService) ModifyBooking(ctx context.Context, bookingID, userID uuid.UUID, req BookingRequest) (*domain.Booking, error) {
	s.log.Info("modify booking request",
		zap.String("booking_id", bookingID.String()),
		zap.String("user_id", userID.String()),
		zap.Strings("seats", req.SeatNumbers),
	)

	if userID == uuid.Nil {
		return nil, domain.ErrInvalidUserID
	}
	if len(req.SeatNumbers) > 0 {
		if err := validateSeatNumbers(req.SeatNumbers); err != nil {
			return nil, err
		}
		if !req.SeatCategory.Valid() {
			return nil, domain.ErrInvalidSeatCategory
		}
	}

	current, err := s.loadOwnedBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	if current.IsCancelled() {
		return nil, domain.ErrBookingNotModifiable
	}
	if req.ShowID != uuid.Nil && req.ShowID != current.ShowID {
		return nil, domain.ErrShowMismatch
	}

	show, err := s.loadShow(ctx, current.ShowID)
	if err != nil {
		return nil, err
	}

	promoID := req.PromoCodeID
	if promoID == nil {
		promoID = current.PromoCodeID
	}
	promo, err := s.loadPromo(ctx, promoID)
	if err != nil {
		return nil, err
	}

	oldSeats := current.SeatNumbers()
	newSeats, category := req.SeatNumbers, req.SeatCategory
	if len(newSeats) == 0 {
		newSeats = oldSeats
		category = seatCategoryOf(current)
	}

	if err := s.availability.EnsureAvailable(ctx, show.ID, newSeats, &current.ID); err != nil {
		return nil, err
	}

	// Seats leaving the booking go back into circulation, so they are locked too.
	lockedSeats := lo.Uniq(append(slices.Clone(oldSeats), newSeats...))

	var booking *domain.Booking
	err = s.locks.WithLocks(ctx, domain.SeatKeys(show.ID, lockedSeats), func(ctx context.Context, held *ScopedLock) error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			b, err := s.loadOwnedBooking(ctx, bookingID, userID)
			if err != nil {
				return err
			}
			if b.IsCancelled() {
				return domain.ErrBookingNotModifiable
			}
			if !lo.Every(lockedSeats, b.SeatNumbers()) {
				return fmt.Errorf("%w: booking %s changed while waiting for seat locks", domain.ErrSeatLocked, b.ID)
			}

			if err := s.availability.EnsureAvailable(ctx, show.ID, newSeats, &b.ID); err != nil {
				return err
			}

			b.Seats = domain.NewBookingSeats(b.ID, newSeats, category, show.PricePerSeatCents)
			s.applyPricing(b, promo)
			b.UpdatedAt = s.now()

			if err := s.bookings.ReplaceSeats(ctx, b); err != nil {
				return fmt.Errorf("replace booking seats: %w", err)
			}

			if err := held.Verify(ctx); err != nil {
				return err
			}

			booking = b
			return nil
		})
	})
	if err != nil {
		s.logFailure("modify booking failed", err, zap.String("booking_id", bookingID.String()))
		return nil, err
	}

	s.log.Info("booking modified",
		zap.String("booking_id", booking.ID.String()),
		zap.Strings("seats", booking.SeatNumbers()),
		zap.Int64("total_amount_cents", booking.TotalAmountCents),
	)
	s.afterCommit(ctx, domain.EventBookingModified, booking)

	return booking, nil
}

// CancelBooking needs no seat locks: availability already ignores cancelled
// bookings, so flipping the status can only free seats.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return domain.ErrInvalidUserID
	}

	booking, err := s.loadOwnedBooking(ctx, bookingID, userID)
	if err != nil {
		return err
	}
	if booking.IsCancelled() {
		return nil
	}

	if err := s.bookings.UpdateStatus(ctx, booking.ID, domain.BookingCancelled); err != nil {
		return fmt.Errorf("cancel booking %s: %w", booking.ID, err)
	}
	booking.Status = domain.BookingCancelled
	booking.UpdatedAt = s.now()

	s.log.Info("booking cancelled", zap.String("booking_id", booking.ID.String()), zap.String("user_id", userID.String()))
	s.afterCommit(ctx, domain.EventBookingCancelled, booking)

	return nil
}

// GroupBooking books each request on its own. A failed request does not undo
// the ones confirmed before it.
func (s *BookingService) GroupBooking(ctx context.Context, userID uuid.UUID, reqs []BookingRequest) ([]GroupBookingResult, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrInvalidUserID
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: group booking needs at least one request", domain.ErrInvalidRequest)
	}

	results := make([]GroupBookingResult, 0, len(reqs))
	for _, req := range reqs {
		booking, err := s.Book(ctx, userID, req)
		results = append(results, GroupBookingResult{Booking: booking, Err: err})
	}
	return results, nil
}

// GetUnavailableSeats always reads committed bookings. A cached copy could
// outlive a cancellation whose eviction failed.
func (s *BookingService) GetUnavailableSeats(ctx context.Context, showID uuid.UUID) ([]string, error) {
	if showID == uuid.Nil {
		return nil, domain.ErrInvalidShowID
	}
	return s.availability.UnavailableSeats(ctx, showID)
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID uuid.UUID) (*domain.Booking, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrInvalidUserID
	}
	return s.loadOwnedBooking(ctx, bookingID, userID)
}

func (s *BookingService) ListBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrInvalidUserID
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	bookings, err := s.bookings.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) newBooking(userID uuid.UUID, show *domain.Show, req BookingRequest, promo *domain.PromoCode) *domain.Booking {
	now := s.now()
	b := &domain.Booking{
		ID:        uuid.New(),
		UserID:    userID,
		ShowID:    show.ID,
		Status:    domain.BookingConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Seats = domain.NewBookingSeats(b.ID, req.SeatNumbers, req.SeatCategory, show.PricePerSeatCents)
	s.applyPricing(b, promo)
	return b
}

// applyPricing recomputes the totals from the seat prices. The discount is
// taken exactly once from the undiscounted subtotal.
func (s *BookingService) applyPricing(b *domain.Booking, promo *domain.PromoCode) {
	subtotal := b.SubtotalCents()
	b.DiscountCents = s.pricing.Discount(promo, subtotal)
	b.TotalAmountCents = subtotal - b.DiscountCents
	b.PromoCodeID = nil
	if promo != nil && promo.IsActive {
		id := promo.ID
		b.PromoCodeID = &id
	}
}

func (s *BookingService) loadShow(ctx context.Context, showID uuid.UUID) (*domain.Show, error) {
	show, err := s.shows.GetByID(ctx, showID)
	if err != nil {
		if errors.Is(err, domain.ErrShowNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrShowNotFound, showID)
		}
		return nil, fmt.Errorf("load show %s: %w", showID, err)
	}
	return show, nil
}

// loadPromo returns nil for an absent or unknown code; neither blocks a booking.
func (s *BookingService) loadPromo(ctx context.Context, promoID *uuid.UUID) (*domain.PromoCode, error) {
	if promoID == nil {
		return nil, nil
	}

	promo, err := s.promos.GetByID(ctx, *promoID)
	if err != nil {
		if errors.Is(err, domain.ErrPromoNotFound) {
			s.log.Warn("promo code not found, ignoring", zap.String("promo_code_id", promoID.String()))
			return nil, nil
		}
		return nil, fmt.Errorf("load promo code %s: %w", promoID, err)
	}
	return promo, nil
}

func (s *BookingService) loadOwnedBooking(ctx context.Context, bookingID, userID uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrBookingNotFound, bookingID)
		}
		return nil, fmt.Errorf("load booking %s: %w", bookingID, err)
	}
	if !booking.OwnedBy(userID) {
		return nil, domain.ErrForbidden
	}
	return booking, nil
}

// afterCommit runs the best-effort side effects. Their failures are logged
// and never reach the caller.
func (s *BookingService) afterCommit(ctx context.Context, eventType domain.BookingEventType, b *domain.Booking) {
	if s.cache != nil {
		keys := []string{UserBookingsCacheKey(b.UserID), BookingCacheKey(b.ID), ShowSeatsCacheKey(b.ShowID)}
		if err := s.cache.Evict(ctx, keys...); err != nil {
			s.log.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
		}
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, domain.NewBookingEvent(eventType, b, s.now())); err != nil {
			s.log.Warn("publish booking event failed",
				zap.String("event", string(eventType)),
				zap.String("booking_id", b.ID.String()),
				zap.Error(err),
			)
		}
	}
}

func (s *BookingService) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("kind", string(domain.KindOf(err))), zap.Error(err))
	if domain.KindOf(err) == domain.KindInternal {
		s.log.Error(msg, fields...)
		return
	}
	s.log.Info(msg, fields...)
}

func validateBookingRequest(userID uuid.UUID, req BookingRequest) error {
	if userID == uuid.Nil {
		return domain.ErrInvalidUserID
	}
	if err := validateSeatSelection(req.ShowID, req.SeatNumbers); err != nil {
		return err
	}
	if !req.SeatCategory.Valid() {
		return domain.ErrInvalidSeatCategory
	}
	if !req.PaymentMethod.Valid() {
		return domain.ErrInvalidPaymentMethod
	}
	return nil
}

func validateSeatSelection(showID uuid.UUID, seats []string) error {
	if showID == uuid.Nil {
		return domain.ErrInvalidShowID
	}
	return validateSeatNumbers(seats)
}

func validateSeatNumbers(seats []string) error {
	if len(seats) == 0 {
		return domain.ErrNoSeatsSelected
	}
	for _, seat := range seats {
		if strings.TrimSpace(seat) == "" {
			return fmt.Errorf("%w: blank seat number", domain.ErrInvalidRequest)
		}
	}
	if len(lo.Uniq(seats)) != len(seats) {
		return domain.ErrDuplicateSeat
	}
	return nil
}

func seatCategoryOf(b *domain.Booking) domain.SeatCategory {
	if len(b.Seats) == 0 {
		return domain.SeatRegular
	}
	return b.Seats[0].Category
}
