package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindActiveByCode(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID, code string) (*ShippingMethod, error)
}
