package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/srgjo27/showtime_booking/internal/core/domain"
)

const bookingColumns = `id, user_id, show_id, promo_code_id, discount_cents, total_amount_cents, status, created_at, updated_at`

type BookingRepository struct {
	db *sqlx.DB
}

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	q := conn(ctx, r.db)

	_, err := q.NamedExecContext(ctx, `
	INSERT INTO bookings (id, user_id, show_id, promo_code_id, discount_cents, total_amount_cents, status, created_at, updated_at)
	VALUES (:id, :user_id, :show_id, :promo_code_id, :discount_cents, :total_amount_cents, :status, :created_at, :updated_at)
	`, booking)
	if err != nil {
		return fmt.Errorf("failed to insert booking header: %w", err)
	}

	return insertSeats(ctx, q, booking.Seats)
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	q := conn(ctx, r.db)

	var booking domain.Booking
	err := q.GetContext(ctx, &booking, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if err := q.SelectContext(ctx, &booking.Seats, `
	SELECT id, booking_id, seat_number, category, price_cents
	FROM booking_seats
	WHERE booking_id = $1
	ORDER BY seat_number
	`, bookingID); err != nil {
		return nil, fmt.Errorf("failed to get booking seats: %w", err)
	}

	return &booking, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, error) {
	q := conn(ctx, r.db)

	var bookings []domain.Booking
	if err := q.SelectContext(ctx, &bookings, `
	SELECT `+bookingColumns+`
	FROM bookings
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3
	`, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	if len(bookings) == 0 {
		return bookings, nil
	}

	ids := lo.Map(bookings, func(b domain.Booking, _ int) string { return b.ID.String() })

	var seats []domain.BookingSeat
	if err := q.SelectContext(ctx, &seats, `
	SELECT id, booking_id, seat_number, category, price_cents
	FROM booking_seats
	WHERE booking_id = ANY($1::uuid[])
	ORDER BY seat_number
	`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to list booking seats: %w", err)
	}

	byBooking := make(map[uuid.UUID][]domain.BookingSeat, len(bookings))
	for _, s := range seats {
		byBooking[s.BookingID] = append(byBooking[s.BookingID], s)
	}
	for i := range bookings {
		bookings[i].Seats = byBooking[bookings[i].ID]
	}

	return bookings, nil
}

func (r *BookingRepository) ReplaceSeats(ctx context.Context, booking *domain.Booking) error {
	q := conn(ctx, r.db)

	if _, err := q.ExecContext(ctx, `DELETE FROM booking_seats WHERE booking_id = $1`, booking.ID); err != nil {
		return fmt.Errorf("failed to delete booking seats: %w", err)
	}

	if err := insertSeats(ctx, q, booking.Seats); err != nil {
		return err
	}

	result, err := q.NamedExecContext(ctx, `
	UPDATE bookings
	SET promo_code_id = :promo_code_id,
		discount_cents = :discount_cents,
		total_amount_cents = :total_amount_cents,
		updated_at = :updated_at
	WHERE id = :id
	`, booking)
	if err != nil {
		return fmt.Errorf("failed to update booking amounts: %w", err)
	}

	return expectOneRow(result, domain.ErrBookingNotFound)
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `
	UPDATE bookings
	SET status = $1, updated_at = $2
	WHERE id = $3
	`, status, time.Now().UTC(), bookingID)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	return expectOneRow(result, domain.ErrBookingNotFound)
}

func (r *BookingRepository) UnavailableSeats(ctx context.Context, showID uuid.UUID, excludeBookingID *uuid.UUID) ([]string, error) {
	var seats []string
	err := conn(ctx, r.db).SelectContext(ctx, &seats, `
	SELECT DISTINCT bs.seat_number
	FROM booking_seats bs
	JOIN bookings b ON b.id = bs.booking_id
	WHERE b.show_id = $1
		AND b.status <> $2
		AND ($3::uuid IS NULL OR b.id <> $3::uuid)
	ORDER BY bs.seat_number
	`, showID, domain.BookingCancelled, excludeBookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unavailable seats: %w", err)
	}

	return seats, nil
}

func insertSeats(ctx context.Context, q dbtx, seats []domain.BookingSeat) error {
	for _, seat := range seats {
		_, err := q.NamedExecContext(ctx, `
		INSERT INTO booking_seats (id, booking_id, seat_number, category, price_cents)
		VALUES (:id, :booking_id, :seat_number, :category, :price_cents)
		`, seat)
		if err != nil {
			return fmt.Errorf("failed to insert booking seat %s: %w", seat.SeatNumber, err)
		}
	}
	return nil
}

func expectOneRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
