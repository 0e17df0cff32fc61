package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindActiveByID(ctx context.Context, db *gorm.DB, workspaceID, id snowflake.ID) (*Product, error)
	FindActiveByIDs(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID, ids []snowflake.ID) ([]Product, error)
}
