// Package domain contains discount definitions, redeemable codes and the
// inputs and outputs of order discount calculation.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type DiscountType string

const (
	DiscountTypePercentage   DiscountType = "percentage"
	DiscountTypeFixedAmount  DiscountType = "fixed_amount"
	DiscountTypeFreeShipping DiscountType = "free_shipping"
	DiscountTypeOther        DiscountType = "other"
)

type ApplyTo string

const (
	ApplyToOrder      ApplyTo = "order"
	ApplyToProducts   ApplyTo = "products"
	ApplyToCategories ApplyTo = "categories"
)

// DiscountRule is a reusable discount definition. DiscountValue is in
// percentage points for percentage rules and in currency otherwise.
type DiscountRule struct {
	ID              snowflake.ID                      `json:"id" gorm:"primaryKey"`
	WorkspaceID     snowflake.ID                      `json:"workspace_id" gorm:"column:workspace_id;not null;index"`
	Name            string                            `json:"name" gorm:"type:text;not null"`
	DiscountType    DiscountType                      `json:"discount_type" gorm:"column:discount_type;type:text;not null"`
	DiscountValue   decimal.Decimal                   `json:"discount_value" gorm:"type:numeric(20,4);not null"`
	ApplyTo         ApplyTo                           `json:"apply_to" gorm:"column:apply_to;type:text;not null;default:order"`
	Products        datatypes.JSONSlice[snowflake.ID] `json:"products,omitempty" gorm:"type:jsonb"`
	Categories      datatypes.JSONSlice[snowflake.ID] `json:"categories,omitempty" gorm:"type:jsonb"`
	MinimumPurchase decimal.NullDecimal               `json:"minimum_purchase,omitempty" gorm:"type:numeric(20,4)"`
	MaximumDiscount decimal.NullDecimal               `json:"maximum_discount,omitempty" gorm:"type:numeric(20,4)"`
	IsActive        bool                              `json:"is_active" gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time                         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time                         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (DiscountRule) TableName() string { return "discount_rules" }

// Coupon is a redeemable code bound to one DiscountRule. TimesUsed is owned
// by the caller and only read here.
type Coupon struct {
	ID                    snowflake.ID `json:"id" gorm:"primaryKey"`
	WorkspaceID           snowflake.ID `json:"workspace_id" gorm:"column:workspace_id;not null;index"`
	Code                  string       `json:"code" gorm:"type:text;not null"`
	DiscountRuleID        snowflake.ID `json:"discount_rule_id" gorm:"column:discount_rule_id;not null;index"`
	ValidFrom             time.Time    `json:"valid_from" gorm:"not null"`
	ValidUntil            *time.Time   `json:"valid_until,omitempty"`
	UsageLimit            *int         `json:"usage_limit,omitempty"`
	UsageLimitPerCustomer *int         `json:"usage_limit_per_customer,omitempty"`
	TimesUsed             int          `json:"times_used" gorm:"not null;default:0"`
	IsActive              bool         `json:"is_active" gorm:"column:is_active;not null;default:true"`
	CreatedAt             time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt             time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Coupon) TableName() string { return "coupons" }

// Check runs the coupon validity states in order; the first failure wins.
// customerUses is the number of redemptions by the current customer, nil
// when no customer is known.
func (c Coupon) Check(rule DiscountRule, subtotal decimal.Decimal, now time.Time, customerUses *int64) error {
	if now.Before(c.ValidFrom) {
		return ErrCouponNotYetValid
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return ErrCouponExpired
	}
	if c.UsageLimit != nil && c.TimesUsed >= *c.UsageLimit {
		return ErrCouponUsageLimitReached
	}
	if c.UsageLimitPerCustomer != nil && customerUses != nil && *customerUses >= int64(*c.UsageLimitPerCustomer) {
		return ErrCouponCustomerLimitReached
	}
	if rule.MinimumPurchase.Valid && subtotal.LessThan(rule.MinimumPurchase.Decimal) {
		return ErrBelowMinimumPurchase
	}
	return nil
}

// CouponRedemption records a confirmed coupon use. Rows are written by the
// order flow; the engine only counts them.
type CouponRedemption struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	WorkspaceID snowflake.ID `json:"workspace_id" gorm:"column:workspace_id;not null;index"`
	CouponID    snowflake.ID `json:"coupon_id" gorm:"column:coupon_id;not null;index"`
	CustomerID  snowflake.ID `json:"customer_id" gorm:"column:customer_id;not null;index"`
	OrderID     snowflake.ID `json:"order_id" gorm:"column:order_id;not null"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CouponRedemption) TableName() string { return "coupon_redemptions" }

// GiftCard is a stored-value balance; 0 <= Balance <= InitialValue.
type GiftCard struct {
	ID           snowflake.ID    `json:"id" gorm:"primaryKey"`
	WorkspaceID  snowflake.ID    `json:"workspace_id" gorm:"column:workspace_id;not null;index"`
	Code         string          `json:"code" gorm:"type:text;not null"`
	InitialValue decimal.Decimal `json:"initial_value" gorm:"type:numeric(20,4);not null"`
	Balance      decimal.Decimal `json:"balance" gorm:"type:numeric(20,4);not null"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
	IsActive     bool            `json:"is_active" gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (GiftCard) TableName() string { return "gift_cards" }

// Usable reports whether the card can be applied at now.
func (g GiftCard) Usable(now time.Time) bool {
	if !g.IsActive {
		return false
	}
	if g.ExpiresAt != nil && now.After(*g.ExpiresAt) {
		return false
	}
	return g.Balance.IsPositive()
}

// LineItem is one order line. A null DiscountMultiplier counts as 1.
type LineItem struct {
	ProductID          snowflake.ID        `json:"product_id"`
	CategoryIDs        []snowflake.ID      `json:"category_ids,omitempty"`
	UnitPrice          decimal.Decimal     `json:"unit_price"`
	Quantity           int64               `json:"quantity"`
	DiscountMultiplier decimal.NullDecimal `json:"discount_multiplier"`
}

var one = decimal.NewFromInt(1)

// Subtotal is unit_price * quantity * discount_multiplier, with the
// multiplier clamped to [0, 1].
func (li LineItem) Subtotal() decimal.Decimal {
	multiplier := one
	if li.DiscountMultiplier.Valid {
		multiplier = decimal.Min(decimal.Max(li.DiscountMultiplier.Decimal, decimal.Zero), one)
	}
	return li.UnitPrice.Mul(decimal.NewFromInt(li.Quantity)).Mul(multiplier)
}

// CouponStatus values reported on Result.
const (
	CouponStatusNone    = ""
	CouponStatusApplied = "applied"
)

// Result is the discount outcome for one order.
type Result struct {
	Discount         decimal.Decimal `json:"discount"`
	ShippingDiscount decimal.Decimal `json:"shipping_discount"`
	CouponDiscount   decimal.Decimal `json:"coupon_discount"`
	GiftCardAmount   decimal.Decimal `json:"gift_card_amount"`

	CouponID      *snowflake.ID `json:"coupon_id,omitempty"`
	AppliedRuleID *snowflake.ID `json:"applied_rule_id,omitempty"`
	GiftCardID    *snowflake.ID `json:"gift_card_id,omitempty"`
	CouponStatus  string        `json:"coupon_status,omitempty"`
}

// FreeShipping reports whether any applied rule waives shipping.
func (r Result) FreeShipping() bool {
	return r.ShippingDiscount.IsPositive()
}
