package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Product is the catalog entry referenced by line items and by product
// priced shipping rules.
type Product struct {
	ID          snowflake.ID                      `json:"id" gorm:"primaryKey"`
	WorkspaceID snowflake.ID                      `json:"workspace_id" gorm:"column:workspace_id;not null;index"`
	SKU         string                            `json:"sku" gorm:"column:sku;type:text;not null"`
	Name        string                            `json:"name" gorm:"type:text;not null"`
	Price       decimal.Decimal                   `json:"price" gorm:"type:numeric(20,4);not null"`
	CategoryIDs datatypes.JSONSlice[snowflake.ID] `json:"category_ids,omitempty" gorm:"column:category_ids;type:jsonb"`
	IsActive    bool                              `json:"is_active" gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time                         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time                         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }
