package services

import (
	"math"

	"github.com/srgjo27/showtime_booking/internal/core/domain"
)

// PromoCalculator turns a promo code into a discount for a given total.
type PromoCalculator struct{}

// Discount is zero for a missing or inactive code. A fixed amount is used as
// is, otherwise the percentage of totalCents, rounded to the nearest cent.
// The result is clamped to [0, totalCents] so a booking never goes negative.
func (PromoCalculator) Discount(promo *domain.PromoCode, totalCents int64) int64 {
	if promo == nil || !promo.IsActive {
		return 0
	}

	var discount int64
	switch {
	case promo.DiscountAmountCents != nil:
		discount = *promo.DiscountAmountCents
	case promo.DiscountPercentage != nil:
		discount = int64(math.Round(float64(totalCents) * *promo.DiscountPercentage / 100))
	}

	if discount < 0 {
		return 0
	}
	if discount > totalCents {
		return totalCents
	}
	return discount
}
