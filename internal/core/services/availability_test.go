package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/showtime_booking/internal/core/domain"
	"github.com/srgjo27/showtime_booking/internal/core/ports/mocks"
	"github.com/srgjo27/showtime_booking/internal/core/services"
)

func TestAvailabilityChecker_UnavailableSeats(t *testing.T) {
	repo := mocks.NewBookingRepository(t)
	checker := services.NewAvailabilityChecker(repo)
	ctx := context.Background()
	showID := uuid.New()

	repo.On("UnavailableSeats", ctx, showID, (*uuid.UUID)(nil)).Return([]string{"B2", "A1", "B2"}, nil)

	seats, err := checker.UnavailableSeats(ctx, showID)

	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B2"}, seats)
}

func TestAvailabilityChecker_Conflicts(t *testing.T) {
	repo := mocks.NewBookingRepository(t)
	checker := services.NewAvailabilityChecker(repo)
	ctx := context.Background()
	showID := uuid.New()
	exclude := uuid.New()

	repo.On("UnavailableSeats", ctx, showID, &exclude).Return([]string{"A1", "C3"}, nil)

	conflicts, err := checker.Conflicts(ctx, showID, []string{"C3", "B2", "A1"}, &exclude)

	require.NoError(t, err)
	assert.Equal(t, []string{"C3", "A1"}, conflicts)
}

func TestAvailabilityChecker_EnsureAvailable(t *testing.T) {
	repo := mocks.NewBookingRepository(t)
	checker := services.NewAvailabilityChecker(repo)
	ctx := context.Background()
	showID := uuid.New()

	repo.On("UnavailableSeats", ctx, showID, mock.Anything).Return([]string{"A2"}, nil)

	assert.NoError(t, checker.EnsureAvailable(ctx, showID, []string{"A1"}, nil))

	err := checker.EnsureAvailable(ctx, showID, []string{"A1", "A2"}, nil)
	var unavailable *domain.SeatUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"A2"}, unavailable.Seats)
	assert.ErrorIs(t, err, domain.ErrSeatUnavailable)
}

func TestAvailabilityChecker_RepositoryError(t *testing.T) {
	repo := mocks.NewBookingRepository(t)
	checker := services.NewAvailabilityChecker(repo)
	ctx := context.Background()
	showID := uuid.New()

	repo.On("UnavailableSeats", ctx, showID, mock.Anything).Return(nil, errors.New("db down"))

	err := checker.EnsureAvailable(ctx, showID, []string{"A1"}, nil)

	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}
