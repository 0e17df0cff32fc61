package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCouponCheckOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	limit := 1
	perCustomer := 2
	rule := DiscountRule{MinimumPurchase: decimal.NewNullDecimal(decimal.NewFromInt(100))}

	// Every gate fails at once; the validity window is reported first.
	coupon := Coupon{
		ValidFrom:             now.Add(time.Hour),
		ValidUntil:            &past,
		UsageLimit:            &limit,
		TimesUsed:             1,
		UsageLimitPerCustomer: &perCustomer,
	}
	uses := int64(5)
	assert.ErrorIs(t, coupon.Check(rule, decimal.NewFromInt(1), now, &uses), ErrCouponNotYetValid)

	coupon.ValidFrom = now.Add(-2 * time.Hour)
	assert.ErrorIs(t, coupon.Check(rule, decimal.NewFromInt(1), now, &uses), ErrCouponExpired)

	coupon.ValidUntil = nil
	assert.ErrorIs(t, coupon.Check(rule, decimal.NewFromInt(1), now, &uses), ErrCouponUsageLimitReached)

	coupon.UsageLimit = nil
	assert.ErrorIs(t, coupon.Check(rule, decimal.NewFromInt(1), now, &uses), ErrCouponCustomerLimitReached)
	assert.ErrorIs(t, coupon.Check(rule, decimal.NewFromInt(1), now, nil), ErrBelowMinimumPurchase)

	assert.NoError(t, coupon.Check(rule, decimal.NewFromInt(100), now, nil))
}

func TestCouponCheckBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	coupon := Coupon{ValidFrom: now, ValidUntil: &now}
	assert.NoError(t, coupon.Check(DiscountRule{}, decimal.Zero, now, nil), "both window ends are inclusive")
}

func TestIsCouponValidityErr(t *testing.T) {
	assert.True(t, IsCouponValidityErr(ErrCouponExpired))
	assert.True(t, IsCouponValidityErr(fmt.Errorf("wrapped: %w", ErrBelowMinimumPurchase)))
	assert.False(t, IsCouponValidityErr(errors.New("connection refused")))
	assert.False(t, IsCouponValidityErr(nil))
}

func TestGiftCardUsable(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	card := GiftCard{IsActive: true, Balance: decimal.NewFromInt(10), ExpiresAt: &later}
	assert.True(t, card.Usable(now))

	card.ExpiresAt = &earlier
	assert.False(t, card.Usable(now))

	card.ExpiresAt = nil
	card.Balance = decimal.Zero
	assert.False(t, card.Usable(now))

	card.Balance = decimal.NewFromInt(1)
	card.IsActive = false
	assert.False(t, card.Usable(now))
}

func TestLineItemSubtotal(t *testing.T) {
	item := LineItem{UnitPrice: decimal.RequireFromString("19.99"), Quantity: 3}
	assert.Equal(t, "59.97", item.Subtotal().StringFixed(2))

	item.DiscountMultiplier = decimal.NewNullDecimal(decimal.RequireFromString("0.5"))
	assert.Equal(t, "29.985", item.Subtotal().String())

	item.DiscountMultiplier = decimal.NewNullDecimal(decimal.NewFromInt(3))
	assert.Equal(t, "59.97", item.Subtotal().StringFixed(2), "multiplier is clamped to 1")

	item.DiscountMultiplier = decimal.NewNullDecimal(decimal.NewFromInt(-1))
	assert.True(t, item.Subtotal().IsZero())
}

func TestResultFreeShipping(t *testing.T) {
	assert.False(t, Result{}.FreeShipping())
	assert.True(t, Result{ShippingDiscount: decimal.NewFromInt(999999)}.FreeShipping())
}
