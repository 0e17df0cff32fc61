package service

import (
	"github.com/shopspring/decimal"
	checkoutdomain "github.com/smallbiznis/orderpricing/internal/checkout/domain"
)

// ComputeTotals combines the order amounts:
//
//	effective_discount = min(discount + gift_card_amount, subtotal)
//	total = subtotal + shipping_cost + tax - effective_discount
//
// Free shipping zeroes the shipping cost. Amounts are rounded to scale and
// negative inputs are treated as zero, so total is never negative.
func ComputeTotals(in checkoutdomain.TotalsInput, scale int32) checkoutdomain.Totals {
	subtotal := nonNegative(in.Subtotal).Round(scale)
	shipping := nonNegative(in.ShippingCost).Round(scale)
	if in.FreeShipping {
		shipping = decimal.Zero
	}
	tax := nonNegative(in.Tax).Round(scale)
	discount := nonNegative(in.Discount).Round(scale)
	gift := nonNegative(in.GiftCardAmount).Round(scale)

	effective := decimal.Min(discount.Add(gift), subtotal)
	total := subtotal.Add(shipping).Add(tax).Sub(effective)

	return checkoutdomain.Totals{
		Subtotal:          subtotal,
		ShippingCost:      shipping,
		Tax:               tax,
		Discount:          discount,
		GiftCardAmount:    gift,
		EffectiveDiscount: effective,
		Total:             total,
	}
}

func nonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
