package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srgjo27/showtime_booking/internal/core/domain"
	"github.com/srgjo27/showtime_booking/internal/core/ports"
)

// PaymentService records a successful charge for a booking. It runs inside
// the booking transaction; returning an error rolls the booking back.
type PaymentService struct {
	payments ports.PaymentRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewPaymentService(payments ports.PaymentRepository, log *zap.Logger) *PaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentService{
		payments: payments,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *PaymentService) Charge(ctx context.Context, req ports.ChargeRequest) (*domain.Payment, error) {
	if !req.Method.Valid() {
		return nil, fmt.Errorf("%w: unsupported payment method %q", domain.ErrPaymentFailed, req.Method)
	}
	if req.AmountCents < 0 {
		return nil, fmt.Errorf("%w: negative amount %d", domain.ErrPaymentFailed, req.AmountCents)
	}

	now := s.now()
	payment := &domain.Payment{
		ID:            uuid.New(),
		BookingID:     req.BookingID,
		UserID:        req.UserID,
		AmountCents:   req.AmountCents,
		Method:        req.Method,
		Status:        domain.PaymentStatusSuccess,
		TransactionID: fmt.Sprintf("TXN-%d-%s", now.UnixMilli(), uuid.NewString()[:8]),
		PaidAt:        now,
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("record payment for booking %s: %w", req.BookingID, err)
	}

	s.log.Info("payment processed",
		zap.String("booking_id", req.BookingID.String()),
		zap.String("transaction_id", payment.TransactionID),
		zap.Int64("amount_cents", payment.AmountCents),
	)
	return payment, nil
}
