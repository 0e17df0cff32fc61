// Package domain holds the order quote request and the totals it produces.
package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	discountdomain "github.com/smallbiznis/orderpricing/internal/discount/domain"
	shippingdomain "github.com/smallbiznis/orderpricing/internal/shipping/domain"
)

type QuoteRequest struct {
	WorkspaceID  snowflake.ID              `json:"workspace_id"`
	CustomerID   *snowflake.ID             `json:"customer_id,omitempty"`
	Items        []discountdomain.LineItem `json:"items"`
	CouponCode   string                    `json:"coupon_code,omitempty"`
	GiftCardCode string                    `json:"gift_card_code,omitempty"`
	Tax          decimal.Decimal           `json:"tax"`

	// Shipping is skipped when ShippingMethod is empty.
	ShippingMethod string                `json:"shipping_method,omitempty"`
	Parcel         shippingdomain.Parcel `json:"parcel"`
	Destination    string                `json:"destination,omitempty"`
}

// TotalsInput is everything the order total depends on.
type TotalsInput struct {
	Subtotal       decimal.Decimal
	ShippingCost   decimal.Decimal
	Tax            decimal.Decimal
	Discount       decimal.Decimal
	GiftCardAmount decimal.Decimal
	FreeShipping   bool
}

// Totals satisfies EffectiveDiscount <= Subtotal and Total >= 0.
type Totals struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	Tax               decimal.Decimal `json:"tax"`
	Discount          decimal.Decimal `json:"discount"`
	GiftCardAmount    decimal.Decimal `json:"gift_card_amount"`
	EffectiveDiscount decimal.Decimal `json:"effective_discount"`
	Total             decimal.Decimal `json:"total"`
}

type LineQuote struct {
	ProductID snowflake.ID    `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Quote struct {
	QuoteID     string                `json:"quote_id"`
	WorkspaceID snowflake.ID          `json:"workspace_id"`
	Lines       []LineQuote           `json:"lines"`
	Shipping    *shippingdomain.Quote `json:"shipping,omitempty"`
	Discount    discountdomain.Result `json:"discount"`
	Totals      Totals                `json:"totals"`
}
