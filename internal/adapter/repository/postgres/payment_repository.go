package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/srgjo27/showtime_booking/internal/core/domain"
)

type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	_, err := conn(ctx, r.db).NamedExecContext(ctx, `
	INSERT INTO payments (id, booking_id, user_id, amount_cents, method, status, transaction_id, paid_at)
	VALUES (:id, :booking_id, :user_id, :amount_cents, :method, :status, :transaction_id, :paid_at)
	`, payment)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}
