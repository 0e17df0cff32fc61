package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/orderpricing/internal/catalog/domain"
	"github.com/smallbiznis/orderpricing/internal/config"
	"github.com/smallbiznis/orderpricing/internal/observability/metrics"
	shippingdomain "github.com/smallbiznis/orderpricing/internal/shipping/domain"
	"github.com/smallbiznis/orderpricing/pkg/workspacectx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PriceResolverParams struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	Cache    domain.PriceCache `optional:"true"`
	Settings *config.PricingConfigHolder
	Metrics  *metrics.Metrics `optional:"true"`
}

// PriceResolver resolves shipping price references against current product
// prices. Product lookups are scoped to the workspace on the context.
type PriceResolver struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	cache    domain.PriceCache
	settings *config.PricingConfigHolder
	metrics  *metrics.Metrics
}

func NewPriceResolver(p PriceResolverParams) shippingdomain.PriceResolver {
	return &PriceResolver{
		db:       p.DB,
		log:      p.Log.Named("catalog.price_resolver"),
		repo:     p.Repo,
		cache:    p.Cache,
		settings: p.Settings,
		metrics:  p.Metrics,
	}
}

func (r *PriceResolver) ResolvePrice(ctx context.Context, ref shippingdomain.PriceRef) (decimal.Decimal, error) {
	switch typed := ref.(type) {
	case nil:
		return decimal.Zero, nil
	case shippingdomain.Amount:
		return typed.Value, nil
	case shippingdomain.ProductRef:
		return r.productPrice(ctx, typed.ProductID)
	default:
		return decimal.Zero, shippingdomain.ErrUnsupportedPriceReference
	}
}

func (r *PriceResolver) productPrice(ctx context.Context, productID snowflake.ID) (decimal.Decimal, error) {
	workspaceID, ok := workspacectx.WorkspaceID(ctx)
	if !ok {
		return decimal.Zero, domain.ErrInvalidWorkspace
	}

	if r.cache != nil {
		price, hit, err := r.cache.Get(ctx, workspaceID, productID)
		if err != nil {
			r.log.Warn("product price cache read failed", zap.String("product_id", productID.String()), zap.Error(err))
		}
		r.metrics.RecordPriceCache(ctx, hit)
		if hit {
			return price, nil
		}
	}

	product, err := r.repo.FindActiveByID(ctx, r.db, workspaceID, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if product == nil {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, workspaceID, productID, product.Price, r.ttl()); err != nil {
			r.log.Warn("product price cache write failed", zap.String("product_id", productID.String()), zap.Error(err))
		}
	}
	return product.Price, nil
}

func (r *PriceResolver) ttl() time.Duration {
	if r.settings == nil {
		return config.DefaultPricingConfig().ProductPriceCacheTTL
	}
	return r.settings.Get().ProductPriceCacheTTL
}
