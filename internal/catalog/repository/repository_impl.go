package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/orderpricing/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindActiveByID(ctx context.Context, db *gorm.DB, workspaceID, id snowflake.ID) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, workspace_id, sku, name, price, category_ids, is_active, created_at, updated_at
		 FROM products WHERE workspace_id = ? AND id = ? AND is_active = ?`,
		workspaceID,
		id,
		true,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindActiveByIDs(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID, ids []snowflake.ID) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var items []domain.Product
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("workspace_id = ? AND id IN ? AND is_active = ?", workspaceID, ids, true).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
