package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/srgjo27/showtime_booking/internal/core/domain"
)

type ShowRepository struct {
	db *sqlx.DB
}

func NewShowRepository(db *sqlx.DB) *ShowRepository {
	return &ShowRepository{db: db}
}

func (r *ShowRepository) GetByID(ctx context.Context, showID uuid.UUID) (*domain.Show, error) {
	var show domain.Show
	err := conn(ctx, r.db).GetContext(ctx, &show, `
	SELECT id, movie_id, screen_id, start_time, end_time, price_per_seat_cents
	FROM shows
	WHERE id = $1
	`, showID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrShowNotFound
		}
		return nil, fmt.Errorf("failed to get show: %w", err)
	}

	return &show, nil
}

func (r *ShowRepository) Create(ctx context.Context, show *domain.Show) error {
	_, err := conn(ctx, r.db).NamedExecContext(ctx, `
	INSERT INTO shows (id, movie_id, screen_id, start_time, end_time, price_per_seat_cents)
	VALUES (:id, :movie_id, :screen_id, :start_time, :end_time, :price_per_seat_cents)
	`, show)
	if err != nil {
		return fmt.Errorf("failed to insert show: %w", err)
	}
	return nil
}

type PromoCodeRepository struct {
	db *sqlx.DB
}

func NewPromoCodeRepository(db *sqlx.DB) *PromoCodeRepository {
	return &PromoCodeRepository{db: db}
}

func (r *PromoCodeRepository) GetByID(ctx context.Context, promoID uuid.UUID) (*domain.PromoCode, error) {
	var promo domain.PromoCode
	err := conn(ctx, r.db).GetContext(ctx, &promo, `
	SELECT id, code, discount_amount_cents, discount_percentage, expires_at, max_uses, uses, is_active
	FROM promo_codes
	WHERE id = $1
	`, promoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPromoNotFound
		}
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}

	return &promo, nil
}

func (r *PromoCodeRepository) Create(ctx context.Context, promo *domain.PromoCode) error {
	_, err := conn(ctx, r.db).NamedExecContext(ctx, `
	INSERT INTO promo_codes (id, code, discount_amount_cents, discount_percentage, expires_at, max_uses, uses, is_active)
	VALUES (:id, :code, :discount_amount_cents, :discount_percentage, :expires_at, :max_uses, :uses, :is_active)
	`, promo)
	if err != nil {
		return fmt.Errorf("failed to insert promo code: %w", err)
	}
	return nil
}
