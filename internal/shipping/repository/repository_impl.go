package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	shippingdomain "github.com/smallbiznis/orderpricing/internal/shipping/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() shippingdomain.Repository {
	return &repo{}
}

func (r *repo) FindActiveByCode(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID, code string) (*shippingdomain.ShippingMethod, error) {
	var method shippingdomain.ShippingMethod
	err := db.WithContext(ctx).Raw(
		`SELECT id, workspace_id, code, name, pricing, volumetric_factor, is_active, created_at, updated_at
		 FROM shipping_methods
		 WHERE workspace_id = ? AND LOWER(code) = ? AND is_active = ?
		 LIMIT 1`,
		workspaceID,
		shippingdomain.NormalizeMethodCode(code),
		true,
	).Scan(&method).Error
	if err != nil {
		return nil, err
	}
	if method.ID == 0 {
		return nil, nil
	}
	return &method, nil
}
