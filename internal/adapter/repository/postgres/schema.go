package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS shows (
	id UUID PRIMARY KEY,
	movie_id UUID NOT NULL,
	screen_id UUID NOT NULL,
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ NOT NULL,
	price_per_seat_cents BIGINT NOT NULL CHECK (price_per_seat_cents >= 0)
);

CREATE TABLE IF NOT EXISTS promo_codes (
	id UUID PRIMARY KEY,
	code VARCHAR(64) NOT NULL UNIQUE,
	discount_amount_cents BIGINT,
	discount_percentage DOUBLE PRECISION,
	expires_at TIMESTAMPTZ,
	max_uses INT,
	uses INT NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS bookings (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL,
	show_id UUID NOT NULL REFERENCES shows(id),
	promo_code_id UUID REFERENCES promo_codes(id),
	discount_cents BIGINT NOT NULL DEFAULT 0,
	total_amount_cents BIGINT NOT NULL,
	status VARCHAR(16) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bookings_show_status ON bookings (show_id, status);
CREATE INDEX IF NOT EXISTS idx_bookings_user_created ON bookings (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS booking_seats (
	id UUID PRIMARY KEY,
	booking_id UUID NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
	seat_number TEXT NOT NULL,
	category VARCHAR(16) NOT NULL,
	price_cents BIGINT NOT NULL,
	UNIQUE (booking_id, seat_number)
);

ALTER TABLE booking_seats ALTER COLUMN seat_number TYPE TEXT;

CREATE TABLE IF NOT EXISTS payments (
	id UUID PRIMARY KEY,
	booking_id UUID NOT NULL REFERENCES bookings(id),
	user_id UUID NOT NULL,
	amount_cents BIGINT NOT NULL,
	method VARCHAR(16) NOT NULL,
	status VARCHAR(16) NOT NULL,
	transaction_id VARCHAR(64) NOT NULL UNIQUE,
	paid_at TIMESTAMPTZ NOT NULL
);
`

func MigrateSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("could not migrate schema: %w", err)
	}
	return nil
}
