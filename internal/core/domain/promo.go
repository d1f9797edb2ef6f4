package domain

import (
	"time"

	"github.com/google/uuid"
)

// PromoCode grants either a fixed or a percentage discount. When both are set
// the fixed amount wins. Usage caps and expiry are enforced by whoever issues
// the code, not by the booking flow.
type PromoCode struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	Code                string     `db:"code" json:"code"`
	DiscountAmountCents *int64     `db:"discount_amount_cents" json:"discount_amount_cents,omitempty"`
	DiscountPercentage  *float64   `db:"discount_percentage" json:"discount_percentage,omitempty"`
	ExpiresAt           *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	MaxUses             *int       `db:"max_uses" json:"max_uses,omitempty"`
	Uses                int        `db:"uses" json:"uses"`
	IsActive            bool       `db:"is_active" json:"is_active"`
}
