package service

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	discountdomain "github.com/smallbiznis/orderpricing/internal/discount/domain"
)

var hundred = decimal.NewFromInt(100)

// RuleDiscount computes the monetary discount a rule grants on an order and
// whether it waives shipping. The amount is capped by the rule's
// maximum_discount and by subtotal, and is zero below minimum_purchase.
func RuleDiscount(rule discountdomain.DiscountRule, items []discountdomain.LineItem, subtotal decimal.Decimal) (decimal.Decimal, bool) {
	if rule.MinimumPurchase.Valid && subtotal.LessThan(rule.MinimumPurchase.Decimal) {
		return decimal.Zero, false
	}

	var amount decimal.Decimal
	switch rule.DiscountType {
	case discountdomain.DiscountTypeFreeShipping:
		return decimal.Zero, true
	case discountdomain.DiscountTypePercentage:
		base := subtotal
		if rule.ApplyTo != discountdomain.ApplyToOrder {
			base = matchingSubtotal(rule, items)
		}
		amount = base.Mul(rule.DiscountValue).Div(hundred)
	case discountdomain.DiscountTypeFixedAmount:
		if rule.ApplyTo != discountdomain.ApplyToOrder && !matchingSubtotal(rule, items).IsPositive() {
			return decimal.Zero, false
		}
		amount = rule.DiscountValue
	default:
		return decimal.Zero, false
	}

	if rule.MaximumDiscount.Valid {
		amount = decimal.Min(amount, rule.MaximumDiscount.Decimal)
	}
	amount = decimal.Min(amount, subtotal)
	if amount.IsNegative() {
		return decimal.Zero, false
	}
	return amount, false
}

// matchingSubtotal sums the line items inside the rule's product or
// category scope.
func matchingSubtotal(rule discountdomain.DiscountRule, items []discountdomain.LineItem) decimal.Decimal {
	scope := make(map[snowflake.ID]struct{})
	switch rule.ApplyTo {
	case discountdomain.ApplyToProducts:
		for _, id := range rule.Products {
			scope[id] = struct{}{}
		}
	case discountdomain.ApplyToCategories:
		for _, id := range rule.Categories {
			scope[id] = struct{}{}
		}
	}
	if len(scope) == 0 {
		return decimal.Zero
	}

	total := decimal.Zero
	for _, item := range items {
		if inScope(rule.ApplyTo, item, scope) {
			total = total.Add(item.Subtotal())
		}
	}
	return total
}

func inScope(applyTo discountdomain.ApplyTo, item discountdomain.LineItem, scope map[snowflake.ID]struct{}) bool {
	if applyTo == discountdomain.ApplyToProducts {
		_, ok := scope[item.ProductID]
		return ok
	}
	for _, categoryID := range item.CategoryIDs {
		if _, ok := scope[categoryID]; ok {
			return true
		}
	}
	return false
}
