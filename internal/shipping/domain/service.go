package domain

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/orderpricing/internal/condition"
)

// PriceResolver turns a PriceRef into an amount.
type PriceResolver interface {
	ResolvePrice(ctx context.Context, ref PriceRef) (decimal.Decimal, error)
}

// Resolver reduces a conditional Config to a concrete one. Non-conditional
// configs are returned unchanged.
type Resolver interface {
	Resolve(ctx context.Context, cfg Config, vars condition.Context) (Config, error)
}

// Calculator computes the base shipping cost of a resolved Config.
type Calculator interface {
	BaseCost(ctx context.Context, weight decimal.Decimal, cfg Config) (decimal.Decimal, error)
}

type Service interface {
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
}

// Parcel is the physical description used for billing weight.
type Parcel struct {
	Weight decimal.Decimal     `json:"weight"`
	Length decimal.NullDecimal `json:"length"`
	Width  decimal.NullDecimal `json:"width"`
	Height decimal.NullDecimal `json:"height"`
}

type QuoteRequest struct {
	WorkspaceID snowflake.ID    `json:"workspace_id"`
	MethodCode  string          `json:"method_code"`
	Parcel      Parcel          `json:"parcel"`
	OrderAmount decimal.Decimal `json:"order_amount"`
	Destination string          `json:"destination,omitempty"`
}

type Quote struct {
	MethodID      string              `json:"method_id"`
	MethodCode    string              `json:"method_code"`
	Mode          Mode                `json:"mode"`
	BillingWeight decimal.Decimal     `json:"billing_weight"`
	Cost          decimal.Decimal     `json:"cost"`
	MinCharge     decimal.NullDecimal `json:"min_charge"`
	Surcharges    json.RawMessage     `json:"surcharges,omitempty"`
	Discounts     json.RawMessage     `json:"discounts,omitempty"`
}
