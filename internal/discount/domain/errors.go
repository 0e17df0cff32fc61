package domain

import "errors"

var (
	ErrInvalidWorkspace = errors.New("invalid_workspace")
	ErrNegativeAmount   = errors.New("negative_amount")
)

// Coupon validity failures. CalculateOrderDiscount treats them as a zero
// discount; ValidateCoupon returns them.
var (
	ErrCouponNotFound             = errors.New("coupon_not_found")
	ErrCouponNotYetValid          = errors.New("coupon_not_yet_valid")
	ErrCouponExpired              = errors.New("coupon_expired")
	ErrCouponUsageLimitReached    = errors.New("coupon_usage_limit_reached")
	ErrCouponCustomerLimitReached = errors.New("coupon_customer_limit_reached")
	ErrBelowMinimumPurchase       = errors.New("below_minimum_purchase")
)

// IsCouponValidityErr reports whether err is a coupon validity failure.
func IsCouponValidityErr(err error) bool {
	for _, target := range []error{
		ErrCouponNotFound,
		ErrCouponNotYetValid,
		ErrCouponExpired,
		ErrCouponUsageLimitReached,
		ErrCouponCustomerLimitReached,
		ErrBelowMinimumPurchase,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
