package service

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	discountdomain "github.com/smallbiznis/orderpricing/internal/discount/domain"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(d(s))
}

func item(product snowflake.ID, price string, qty int64, categories ...snowflake.ID) discountdomain.LineItem {
	return discountdomain.LineItem{
		ProductID:   product,
		CategoryIDs: categories,
		UnitPrice:   d(price),
		Quantity:    qty,
	}
}

func TestRuleDiscount_PercentageCappedByMaximum(t *testing.T) {
	rule := discountdomain.DiscountRule{
		DiscountType:    discountdomain.DiscountTypePercentage,
		DiscountValue:   d("10"),
		ApplyTo:         discountdomain.ApplyToOrder,
		MaximumDiscount: nd("50"),
	}
	amount, free := RuleDiscount(rule, nil, d("600"))
	assert.False(t, free)
	assert.Equal(t, "50.00", amount.StringFixed(2))

	rule.MaximumDiscount = decimal.NullDecimal{}
	amount, _ = RuleDiscount(rule, nil, d("600"))
	assert.Equal(t, "60.00", amount.StringFixed(2))
}

func TestRuleDiscount_MinimumPurchaseGate(t *testing.T) {
	rule := discountdomain.DiscountRule{
		DiscountType:    discountdomain.DiscountTypeFixedAmount,
		DiscountValue:   d("25"),
		ApplyTo:         discountdomain.ApplyToOrder,
		MinimumPurchase: nd("100"),
	}
	amount, _ := RuleDiscount(rule, nil, d("99.99"))
	assert.True(t, amount.IsZero())

	amount, _ = RuleDiscount(rule, nil, d("100"))
	assert.True(t, d("25").Equal(amount))

	shipping := discountdomain.DiscountRule{
		DiscountType:    discountdomain.DiscountTypeFreeShipping,
		MinimumPurchase: nd("100"),
	}
	_, free := RuleDiscount(shipping, nil, d("50"))
	assert.False(t, free, "free shipping also honours the minimum")
	_, free = RuleDiscount(shipping, nil, d("150"))
	assert.True(t, free)
}

func TestRuleDiscount_FixedAmountCappedBySubtotal(t *testing.T) {
	rule := discountdomain.DiscountRule{
		DiscountType:  discountdomain.DiscountTypeFixedAmount,
		DiscountValue: d("80"),
		ApplyTo:       discountdomain.ApplyToOrder,
	}
	amount, _ := RuleDiscount(rule, nil, d("30"))
	assert.True(t, d("30").Equal(amount))
}

func TestRuleDiscount_ProductScope(t *testing.T) {
	items := []discountdomain.LineItem{
		item(1, "100", 2),
		item(2, "50", 1),
	}
	rule := discountdomain.DiscountRule{
		DiscountType:  discountdomain.DiscountTypePercentage,
		DiscountValue: d("10"),
		ApplyTo:       discountdomain.ApplyToProducts,
		Products:      []snowflake.ID{2},
	}
	amount, _ := RuleDiscount(rule, items, d("250"))
	assert.Equal(t, "5.00", amount.StringFixed(2))

	rule.DiscountType = discountdomain.DiscountTypeFixedAmount
	rule.DiscountValue = d("40")
	amount, _ = RuleDiscount(rule, items, d("250"))
	assert.True(t, d("40").Equal(amount), "fixed amount is not scaled by the matching portion")

	rule.Products = []snowflake.ID{99}
	amount, _ = RuleDiscount(rule, items, d("250"))
	assert.True(t, amount.IsZero(), "no matching item, no fixed discount")
}

func TestRuleDiscount_CategoryScope(t *testing.T) {
	items := []discountdomain.LineItem{
		item(1, "100", 1, 7, 8),
		item(2, "60", 1, 9),
		item(3, "40", 1),
	}
	rule := discountdomain.DiscountRule{
		DiscountType:  discountdomain.DiscountTypePercentage,
		DiscountValue: d("50"),
		ApplyTo:       discountdomain.ApplyToCategories,
		Categories:    []snowflake.ID{8, 9},
	}
	amount, _ := RuleDiscount(rule, items, d("200"))
	assert.Equal(t, "80.00", amount.StringFixed(2))
}

func TestRuleDiscount_LineMultiplier(t *testing.T) {
	half := item(1, "100", 2)
	half.DiscountMultiplier = nd("0.5")
	rule := discountdomain.DiscountRule{
		DiscountType:  discountdomain.DiscountTypePercentage,
		DiscountValue: d("10"),
		ApplyTo:       discountdomain.ApplyToProducts,
		Products:      []snowflake.ID{1},
	}
	amount, _ := RuleDiscount(rule, []discountdomain.LineItem{half}, d("100"))
	assert.Equal(t, "10.00", amount.StringFixed(2))
}

func TestRuleDiscount_OtherTypeIsZero(t *testing.T) {
	rule := discountdomain.DiscountRule{DiscountType: discountdomain.DiscountTypeOther, DiscountValue: d("10")}
	amount, free := RuleDiscount(rule, nil, d("100"))
	assert.True(t, amount.IsZero())
	assert.False(t, free)
}
