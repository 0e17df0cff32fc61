package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	discountdomain "github.com/smallbiznis/orderpricing/internal/discount/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() discountdomain.Repository {
	return &repo{}
}

func (r *repo) FindActiveCouponByCode(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID, code string) (*discountdomain.Coupon, error) {
	var coupon discountdomain.Coupon
	err := db.WithContext(ctx).
		Where("workspace_id = ? AND UPPER(code) = ? AND is_active = ?", workspaceID, strings.ToUpper(strings.TrimSpace(code)), true).
		First(&coupon).Error
	return found(&coupon, err)
}

func (r *repo) FindActiveRuleByID(ctx context.Context, db *gorm.DB, workspaceID, id snowflake.ID) (*discountdomain.DiscountRule, error) {
	var rule discountdomain.DiscountRule
	err := db.WithContext(ctx).
		Where("workspace_id = ? AND id = ? AND is_active = ?", workspaceID, id, true).
		First(&rule).Error
	return found(&rule, err)
}

func (r *repo) ListActiveRules(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID) ([]discountdomain.DiscountRule, error) {
	var items []discountdomain.DiscountRule
	err := db.WithContext(ctx).
		Where("workspace_id = ? AND is_active = ?", workspaceID, true).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountCustomerRedemptions(ctx context.Context, db *gorm.DB, couponID, customerID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&discountdomain.CouponRedemption{}).
		Where("coupon_id = ? AND customer_id = ?", couponID, customerID).
		Count(&count).Error
	return count, err
}

func (r *repo) FindActiveGiftCardByCode(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID, code string) (*discountdomain.GiftCard, error) {
	var card discountdomain.GiftCard
	err := db.WithContext(ctx).
		Where("workspace_id = ? AND UPPER(code) = ? AND is_active = ?", workspaceID, strings.ToUpper(strings.TrimSpace(code)), true).
		First(&card).Error
	return found(&card, err)
}

func found[T any](item *T, err error) (*T, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}
