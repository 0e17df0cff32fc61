package service

import (
	"github.com/shopspring/decimal"
	shippingdomain "github.com/smallbiznis/orderpricing/internal/shipping/domain"
)

// BillingWeight returns the greater of the actual weight and the volumetric
// weight (length * width * height / factor, rounded half-up to 2 places).
// Without a factor or with any dimension missing the actual weight is used.
func BillingWeight(actual decimal.Decimal, length, width, height, factor decimal.NullDecimal) decimal.Decimal {
	if !factor.Valid || !factor.Decimal.IsPositive() {
		return actual
	}
	if !length.Valid || !width.Valid || !height.Valid {
		return actual
	}

	volumetric := length.Decimal.Mul(width.Decimal).Mul(height.Decimal).
		Div(factor.Decimal).
		Round(2)
	return decimal.Max(actual, volumetric)
}

// ParcelBillingWeight applies BillingWeight to a parcel.
func ParcelBillingWeight(p shippingdomain.Parcel, factor decimal.NullDecimal) decimal.Decimal {
	return BillingWeight(p.Weight, p.Length, p.Width, p.Height, factor)
}
