package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/orderpricing/internal/catalog/domain"
	discountdomain "github.com/smallbiznis/orderpricing/internal/discount/domain"
	shippingdomain "github.com/smallbiznis/orderpricing/internal/shipping/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DemoShippingMethod = "standard"
	DemoCouponCode     = "WELCOME10"
	DemoGiftCardCode   = "GIFT-25"
	DemoProductSKU     = "DEMO-MUG"

	demoRuleName = "Welcome 10%"
)

// standard: free from 150, 20 + 1.5/kg from 20kg, otherwise 9 + 2.5/kg.
const demoShippingPricing = `{
	"mode": "conditional",
	"pricing_rules": [
		{"priority": 1, "conditions": [{"type":"order_amount_gte","value":150}], "pricing": {"type":"free"}},
		{"priority": 2, "conditions": [{"type":"weight_gte","value":20}], "pricing": {"type":"linear","base":20,"per_kg":1.5}},
		{"priority": 3, "pricing": {"type":"linear","base":9,"per_kg":2.5}}
	]
}`

// EnsureDemoWorkspace seeds one shipping method, product, coupon and gift
// card for workspaceID. Existing rows are left untouched.
func EnsureDemoWorkspace(db *gorm.DB, node *snowflake.Node, workspaceID snowflake.ID) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil {
		return errors.New("seed id generator is required")
	}
	if workspaceID == 0 {
		return errors.New("seed workspace id is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureShippingMethodTx(ctx, tx, node, workspaceID); err != nil {
			return err
		}
		if err := ensureProductTx(ctx, tx, node, workspaceID); err != nil {
			return err
		}
		rule, err := ensureDiscountRuleTx(ctx, tx, node, workspaceID)
		if err != nil {
			return err
		}
		if err := ensureCouponTx(ctx, tx, node, workspaceID, rule.ID); err != nil {
			return err
		}
		return ensureGiftCardTx(ctx, tx, node, workspaceID)
	})
}

func ensureShippingMethodTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, workspaceID snowflake.ID) error {
	var method shippingdomain.ShippingMethod
	err := tx.WithContext(ctx).
		Where("workspace_id = ? AND code = ?", workspaceID, DemoShippingMethod).
		First(&method).Error
	if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	now := time.Now().UTC()
	method = shippingdomain.ShippingMethod{
		ID:          node.Generate(),
		WorkspaceID: workspaceID,
		Code:        DemoShippingMethod,
		Name:        "Standard",
		Pricing:     datatypes.JSON(demoShippingPricing),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return tx.WithContext(ctx).Create(&method).Error
}

func ensureProductTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, workspaceID snowflake.ID) error {
	var product catalogdomain.Product
	err := tx.WithContext(ctx).
		Where("workspace_id = ? AND sku = ?", workspaceID, DemoProductSKU).
		First(&product).Error
	if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	now := time.Now().UTC()
	product = catalogdomain.Product{
		ID:          node.Generate(),
		WorkspaceID: workspaceID,
		SKU:         DemoProductSKU,
		Name:        "Demo mug",
		Price:       decimal.RequireFromString("12.50"),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return tx.WithContext(ctx).Create(&product).Error
}

func ensureDiscountRuleTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, workspaceID snowflake.ID) (discountdomain.DiscountRule, error) {
	var rule discountdomain.DiscountRule
	err := tx.WithContext(ctx).
		Where("workspace_id = ? AND name = ?", workspaceID, demoRuleName).
		First(&rule).Error
	if err == nil {
		return rule, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return rule, err
	}
	now := time.Now().UTC()
	rule = discountdomain.DiscountRule{
		ID:              node.Generate(),
		WorkspaceID:     workspaceID,
		Name:            demoRuleName,
		DiscountType:    discountdomain.DiscountTypePercentage,
		DiscountValue:   decimal.NewFromInt(10),
		ApplyTo:         discountdomain.ApplyToOrder,
		MinimumPurchase: decimal.NewNullDecimal(decimal.NewFromInt(20)),
		MaximumDiscount: decimal.NewNullDecimal(decimal.NewFromInt(50)),
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tx.WithContext(ctx).Create(&rule).Error; err != nil {
		return rule, err
	}
	return rule, nil
}

func ensureCouponTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, workspaceID, ruleID snowflake.ID) error {
	var coupon discountdomain.Coupon
	err := tx.WithContext(ctx).
		Where("workspace_id = ? AND code = ?", workspaceID, DemoCouponCode).
		First(&coupon).Error
	if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	now := time.Now().UTC()
	limit := 100
	perCustomer := 1
	coupon = discountdomain.Coupon{
		ID:                    node.Generate(),
		WorkspaceID:           workspaceID,
		Code:                  DemoCouponCode,
		DiscountRuleID:        ruleID,
		ValidFrom:             now.Add(-time.Hour),
		UsageLimit:            &limit,
		UsageLimitPerCustomer: &perCustomer,
		IsActive:              true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	return tx.WithContext(ctx).Create(&coupon).Error
}

func ensureGiftCardTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, workspaceID snowflake.ID) error {
	var card discountdomain.GiftCard
	err := tx.WithContext(ctx).
		Where("workspace_id = ? AND code = ?", workspaceID, DemoGiftCardCode).
		First(&card).Error
	if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	now := time.Now().UTC()
	value := decimal.NewFromInt(25)
	card = discountdomain.GiftCard{
		ID:           node.Generate(),
		WorkspaceID:  workspaceID,
		Code:         DemoGiftCardCode,
		InitialValue: value,
		Balance:      value,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return tx.WithContext(ctx).Create(&card).Error
}
