package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/orderpricing/internal/condition"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Mode selects the pricing formula of a Config.
type Mode string

const (
	ModeLinear      Mode = "linear"
	ModeStep        Mode = "step"
	ModeTier        Mode = "tier"
	ModeConditional Mode = "conditional"
)

// Rules is the mode-specific payload of a resolved Config. The concrete
// type fixes the formula; see the variants below.
type Rules interface {
	Mode() Mode
	rules()
}

// FixedPrice charges a flat amount regardless of weight.
type FixedPrice struct {
	Price decimal.Decimal
}

// BaseRate charges Base + weight * PerKg.
type BaseRate struct {
	Base  decimal.Decimal
	PerKg decimal.Decimal
}

// UnitRate charges FirstUnit for the first kilogram and AdditionalUnit for
// every kilogram after it. Either reference may be nil.
type UnitRate struct {
	FirstUnit      PriceRef
	AdditionalUnit PriceRef
}

// PerWeight charges weight * UnitPrice, floored at MinCharge.
type PerWeight struct {
	UnitPrice decimal.Decimal
	MinCharge decimal.Decimal
}

// StepRate charges FirstPrice up to FirstWeight and AdditionalPrice for
// every started AdditionalWeight increment above it.
type StepRate struct {
	FirstWeight      decimal.Decimal
	FirstPrice       decimal.Decimal
	AdditionalWeight decimal.Decimal
	AdditionalPrice  decimal.Decimal
}

// WeightTier prices every weight up to and including MaxKg.
type WeightTier struct {
	MaxKg decimal.Decimal
	Price decimal.Decimal
}

// TierTable is the list-of-tiers shape of tier mode.
type TierTable struct {
	Tiers []WeightTier
}

// MatchType tells how a matched RangeTier price is applied.
type MatchType string

const (
	MatchFixedPrice MatchType = "fixed_price"
	MatchPerWeight  MatchType = "per_weight"
)

// RangeTier covers Min <= weight < Max. A nil Max is unbounded.
type RangeTier struct {
	Min   decimal.Decimal
	Max   *decimal.Decimal
	Price decimal.Decimal
}

// RangeTable is the range shape of tier mode.
type RangeTable struct {
	Ranges    []RangeTier
	MatchType MatchType
}

func (FixedPrice) Mode() Mode { return ModeLinear }
func (BaseRate) Mode() Mode   { return ModeLinear }
func (UnitRate) Mode() Mode   { return ModeLinear }
func (PerWeight) Mode() Mode  { return ModeLinear }
func (StepRate) Mode() Mode   { return ModeStep }
func (TierTable) Mode() Mode  { return ModeTier }
func (RangeTable) Mode() Mode { return ModeTier }

func (FixedPrice) rules() {}
func (BaseRate) rules()   {}
func (UnitRate) rules()   {}
func (PerWeight) rules()  {}
func (StepRate) rules()   {}
func (TierTable) rules()  {}
func (RangeTable) rules() {}

// PriceRef is a price that is either known (Amount) or must be looked up
// (ProductRef).
type PriceRef interface {
	priceRef()
}

// Amount is a literal price.
type Amount struct {
	Value decimal.Decimal
}

// ProductRef prices at the current price of a catalog product.
type ProductRef struct {
	ProductID snowflake.ID
}

func (Amount) priceRef()     {}
func (ProductRef) priceRef() {}

// Config is a decoded pricing configuration. Rules is nil for conditional
// configs and for unknown modes.
type Config struct {
	Mode         Mode
	Rules        Rules
	MinCharge    decimal.NullDecimal
	Surcharges   json.RawMessage
	Discounts    json.RawMessage
	PricingRules []PricingRule
}

// IsConditional reports whether the config must be resolved before costing.
func (c Config) IsConditional() bool {
	return c.Mode == ModeConditional
}

// PricingType tags the payload of a conditional PricingRule.
type PricingType string

const (
	PricingFree   PricingType = "free"
	PricingLinear PricingType = "linear"
)

// Pricing is the pricing payload of a PricingRule.
type Pricing struct {
	Type           PricingType
	Base           decimal.NullDecimal
	PerKg          decimal.NullDecimal
	FirstUnit      PriceRef
	AdditionalUnit PriceRef
}

// PricingRule is one candidate of a conditional config. Lower Priority is
// evaluated first; no Conditions means the rule always matches.
type PricingRule struct {
	Priority   int
	Conditions []condition.Entry
	Pricing    Pricing
	MinCharge  decimal.NullDecimal
	Surcharges json.RawMessage
	Discounts  json.RawMessage
}

// ShippingMethod is a workspace-scoped carrier service with its stored
// pricing configuration.
type ShippingMethod struct {
	ID               snowflake.ID        `json:"id" gorm:"primaryKey"`
	WorkspaceID      snowflake.ID        `json:"workspace_id" gorm:"column:workspace_id;not null;index"`
	Code             string              `json:"code" gorm:"type:text;not null"`
	Name             string              `json:"name" gorm:"type:text;not null"`
	Pricing          datatypes.JSON      `json:"pricing" gorm:"type:jsonb;not null"`
	VolumetricFactor decimal.NullDecimal `json:"volumetric_factor,omitempty" gorm:"type:numeric(12,4)"`
	IsActive         bool                `json:"is_active" gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time           `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time           `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ShippingMethod) TableName() string { return "shipping_methods" }

// BeforeSave stores the code in the slug form lookups match against.
func (m *ShippingMethod) BeforeSave(*gorm.DB) error {
	m.Code = NormalizeMethodCode(m.Code)
	return nil
}

// NormalizeMethodCode maps a caller supplied method code ("JNE Reg") to its
// stored slug form ("jne-reg").
func NormalizeMethodCode(code string) string {
	return slug.Make(code)
}

// Config decodes the stored pricing payload.
func (m ShippingMethod) Config() (Config, error) {
	return DecodeConfig(m.Pricing)
}
