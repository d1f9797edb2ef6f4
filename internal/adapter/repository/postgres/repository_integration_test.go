package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/showtime_booking/internal/core/domain"
)

var (
	testDB     *sqlx.DB
	testDBOnce sync.Once
)

func getDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("set INTEGRATION_TEST=true and POSTGRES_URL to run")
	}

	testDBOnce.Do(func() {
		db, err := sqlx.Open("postgres", os.Getenv("POSTGRES_URL"))
		if err != nil {
			panic(err)
		}
		if err := MigrateSchema(context.Background(), db); err != nil {
			panic(err)
		}
		testDB = db
	})
	return testDB
}

func seedShow(t *testing.T, db *sqlx.DB) *domain.Show {
	t.Helper()
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	show := &domain.Show{
		ID:                uuid.New(),
		MovieID:           uuid.New(),
		ScreenID:          uuid.New(),
		StartTime:         start,
		EndTime:           start.Add(2 * time.Hour),
		PricePerSeatCents: 1000,
	}
	require.NoError(t, NewShowRepository(db).Create(context.Background(), show))
	return show
}

func newBooking(show *domain.Show, userID uuid.UUID, seats ...string) *domain.Booking {
	now := time.Now().UTC().Truncate(time.Microsecond)
	b := &domain.Booking{
		ID:        uuid.New(),
		UserID:    userID,
		ShowID:    show.ID,
		Status:    domain.BookingConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Seats = domain.NewBookingSeats(b.ID, seats, domain.SeatRegular, show.PricePerSeatCents)
	b.TotalAmountCents = b.SubtotalCents()
	return b
}

func TestBookingRepository_Lifecycle(t *testing.T) {
	db := getDB(t)
	ctx := context.Background()
	repo := NewBookingRepository(db)
	show := seedShow(t, db)
	userID := uuid.New()

	booking := newBooking(show, userID, "A1", "A2")
	require.NoError(t, repo.CreateBooking(ctx, booking))

	got, err := repo.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, got.SeatNumbers())
	assert.Equal(t, int64(2000), got.TotalAmountCents)

	seats, err := repo.UnavailableSeats(ctx, show.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, seats)

	seats, err = repo.UnavailableSeats(ctx, show.ID, &booking.ID)
	require.NoError(t, err)
	assert.Empty(t, seats)

	got.Seats = domain.NewBookingSeats(got.ID, []string{"A1", "A3"}, domain.SeatRegular, show.PricePerSeatCents)
	got.TotalAmountCents = got.SubtotalCents()
	got.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.ReplaceSeats(ctx, got))

	seats, err = repo.UnavailableSeats(ctx, show.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A3"}, seats)

	require.NoError(t, repo.UpdateStatus(ctx, booking.ID, domain.BookingCancelled))

	seats, err = repo.UnavailableSeats(ctx, show.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, seats)

	list, err := repo.ListByUser(ctx, userID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.BookingCancelled, list[0].Status)
	assert.Len(t, list[0].Seats, 2)
}

func TestBookingRepository_LongSeatNumber(t *testing.T) {
	db := getDB(t)
	ctx := context.Background()
	repo := NewBookingRepository(db)
	show := seedShow(t, db)
	seat := "BALCONY-LEFT-ROW-12-SEAT-0042"

	booking := newBooking(show, uuid.New(), seat)
	require.NoError(t, repo.CreateBooking(ctx, booking))

	seats, err := repo.UnavailableSeats(ctx, show.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{seat}, seats)
}

func TestBookingRepository_NotFound(t *testing.T) {
	db := getDB(t)
	repo := NewBookingRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	err = repo.UpdateStatus(context.Background(), uuid.New(), domain.BookingCancelled)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db := getDB(t)
	ctx := context.Background()
	repo := NewBookingRepository(db)
	show := seedShow(t, db)
	booking := newBooking(show, uuid.New(), "B1")

	boom := errors.New("charge declined")
	err := NewTransactor(db).WithinTx(ctx, func(ctx context.Context) error {
		if err := repo.CreateBooking(ctx, booking); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.GetByID(ctx, booking.ID)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestPromoCodeRepository_GetByID(t *testing.T) {
	db := getDB(t)
	ctx := context.Background()
	repo := NewPromoCodeRepository(db)

	pct := 10.0
	promo := &domain.PromoCode{
		ID:                 uuid.New(),
		Code:               "SAVE-" + uuid.NewString()[:8],
		DiscountPercentage: &pct,
		IsActive:           true,
	}
	require.NoError(t, repo.Create(ctx, promo))

	got, err := repo.GetByID(ctx, promo.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DiscountAmountCents)
	require.NotNil(t, got.DiscountPercentage)
	assert.InDelta(t, 10.0, *got.DiscountPercentage, 0.0001)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrPromoNotFound)
}
