package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	CalculateOrderDiscount(ctx context.Context, req CalculateRequest) (*Result, error)
	ValidateCoupon(ctx context.Context, req ValidateCouponRequest) (*Coupon, error)
}

type CalculateRequest struct {
	WorkspaceID  snowflake.ID    `json:"workspace_id"`
	Items        []LineItem      `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	CouponCode   string          `json:"coupon_code,omitempty"`
	GiftCardCode string          `json:"gift_card_code,omitempty"`
	CustomerID   *snowflake.ID   `json:"customer_id,omitempty"`
}

type ValidateCouponRequest struct {
	WorkspaceID snowflake.ID    `json:"workspace_id"`
	Code        string          `json:"code"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	CustomerID  *snowflake.ID   `json:"customer_id,omitempty"`
}
