package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/orderpricing/internal/catalog/domain"
	discountdomain "github.com/smallbiznis/orderpricing/internal/discount/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("catalog.service"),
		repo: p.Repo,
	}
}

func (s *Service) EnrichLineItems(ctx context.Context, workspaceID snowflake.ID, items []discountdomain.LineItem) ([]discountdomain.LineItem, error) {
	if workspaceID == 0 {
		return nil, domain.ErrInvalidWorkspace
	}

	out := make([]discountdomain.LineItem, len(items))
	copy(out, items)

	var missing []snowflake.ID
	seen := make(map[snowflake.ID]struct{})
	for _, item := range out {
		if len(item.CategoryIDs) > 0 || item.ProductID == 0 {
			continue
		}
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		missing = append(missing, item.ProductID)
	}
	if len(missing) == 0 {
		return out, nil
	}

	products, err := s.repo.FindActiveByIDs(ctx, s.db, workspaceID, missing)
	if err != nil {
		return nil, err
	}

	categories := make(map[snowflake.ID][]snowflake.ID, len(products))
	for _, p := range products {
		categories[p.ID] = append([]snowflake.ID(nil), p.CategoryIDs...)
	}

	for i := range out {
		if len(out[i].CategoryIDs) > 0 {
			continue
		}
		if ids, ok := categories[out[i].ProductID]; ok {
			out[i].CategoryIDs = ids
		}
	}

	s.log.Debug("line items enriched",
		zap.String("workspace_id", workspaceID.String()),
		zap.Int("requested", len(missing)),
		zap.Int("found", len(products)),
	)
	return out, nil
}
