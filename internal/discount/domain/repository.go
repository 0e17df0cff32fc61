package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is read-only: counters and balances are written by the order flow.
type Repository interface {
	FindActiveCouponByCode(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID, code string) (*Coupon, error)
	FindActiveRuleByID(ctx context.Context, db *gorm.DB, workspaceID, id snowflake.ID) (*DiscountRule, error)
	ListActiveRules(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID) ([]DiscountRule, error)
	CountCustomerRedemptions(ctx context.Context, db *gorm.DB, couponID, customerID snowflake.ID) (int64, error)
	FindActiveGiftCardByCode(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID, code string) (*GiftCard, error)
}
