package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/showtime_booking/internal/core/domain"
	"github.com/srgjo27/showtime_booking/internal/core/ports"
	"github.com/srgjo27/showtime_booking/internal/core/ports/mocks"
	"github.com/srgjo27/showtime_booking/internal/core/services"
)

func TestPaymentService_Charge(t *testing.T) {
	repo := mocks.NewPaymentRepository(t)
	svc := services.NewPaymentService(repo, nil)
	ctx := context.Background()
	req := ports.ChargeRequest{BookingID: uuid.New(), UserID: uuid.New(), AmountCents: 1800, Method: domain.PaymentUPI}

	repo.On("Create", ctx, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.BookingID == req.BookingID && p.AmountCents == 1800 && p.Status == domain.PaymentStatusSuccess
	})).Return(nil)

	payment, err := svc.Charge(ctx, req)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(payment.TransactionID, "TXN-"))
	assert.Equal(t, domain.PaymentUPI, payment.Method)
	assert.Equal(t, req.UserID, payment.UserID)
}

func TestPaymentService_Charge_Rejected(t *testing.T) {
	tests := []struct {
		name string
		req  ports.ChargeRequest
	}{
		{name: "unknown method", req: ports.ChargeRequest{AmountCents: 100, Method: "CHEQUE"}},
		{name: "negative amount", req: ports.ChargeRequest{AmountCents: -1, Method: domain.PaymentCard}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := services.NewPaymentService(mocks.NewPaymentRepository(t), nil)

			payment, err := svc.Charge(context.Background(), tt.req)

			assert.Nil(t, payment)
			assert.ErrorIs(t, err, domain.ErrPaymentFailed)
			assert.Equal(t, domain.KindPaymentFailed, domain.KindOf(err))
		})
	}
}

func TestPaymentService_Charge_RepositoryError(t *testing.T) {
	repo := mocks.NewPaymentRepository(t)
	svc := services.NewPaymentService(repo, nil)

	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	_, err := svc.Charge(context.Background(), ports.ChargeRequest{AmountCents: 100, Method: domain.PaymentCard})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert failed")
}
