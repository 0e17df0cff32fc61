package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	discountdomain "github.com/smallbiznis/orderpricing/internal/discount/domain"
)

type Service interface {
	// EnrichLineItems fills missing category membership from the catalog.
	// Items keep their order; unknown products are left untouched.
	EnrichLineItems(ctx context.Context, workspaceID snowflake.ID, items []discountdomain.LineItem) ([]discountdomain.LineItem, error)
}

// PriceCache stores current product prices keyed by workspace and product.
type PriceCache interface {
	Get(ctx context.Context, workspaceID, productID snowflake.ID) (decimal.Decimal, bool, error)
	Set(ctx context.Context, workspaceID, productID snowflake.ID, price decimal.Decimal, ttl time.Duration) error
}

var (
	ErrInvalidWorkspace = errors.New("invalid_workspace")
	ErrProductNotFound  = errors.New("product_not_found")
)
