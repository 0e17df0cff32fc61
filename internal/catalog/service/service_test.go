package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/orderpricing/internal/catalog/domain"
	"github.com/smallbiznis/orderpricing/internal/catalog/repository"
	"github.com/smallbiznis/orderpricing/internal/config"
	discountdomain "github.com/smallbiznis/orderpricing/internal/discount/domain"
	shippingdomain "github.com/smallbiznis/orderpricing/internal/shipping/domain"
	"github.com/smallbiznis/orderpricing/pkg/workspacectx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testWorkspace = snowflake.ID(100)

func setupCatalogDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Product{}))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, id snowflake.ID, price string, categories ...snowflake.ID) {
	t.Helper()
	require.NoError(t, db.Create(&domain.Product{
		ID:          id,
		WorkspaceID: testWorkspace,
		SKU:         "SKU-" + id.String(),
		Name:        "product " + id.String(),
		Price:       decimal.RequireFromString(price),
		CategoryIDs: categories,
		IsActive:    true,
	}).Error)
}

type memoryCache struct {
	prices map[string]decimal.Decimal
	sets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{prices: map[string]decimal.Decimal{}}
}

func (c *memoryCache) Get(_ context.Context, workspaceID, productID snowflake.ID) (decimal.Decimal, bool, error) {
	price, ok := c.prices[priceKey(workspaceID, productID)]
	return price, ok, nil
}

func (c *memoryCache) Set(_ context.Context, workspaceID, productID snowflake.ID, price decimal.Decimal, _ time.Duration) error {
	c.sets++
	c.prices[priceKey(workspaceID, productID)] = price
	return nil
}

func newResolver(db *gorm.DB, cache domain.PriceCache) shippingdomain.PriceResolver {
	return NewPriceResolver(PriceResolverParams{
		DB:       db,
		Log:      zap.NewNop(),
		Repo:     repository.Provide(),
		Cache:    cache,
		Settings: config.NewStaticPricingConfigHolder(config.DefaultPricingConfig()),
	})
}

func TestPriceResolver_ProductRef(t *testing.T) {
	db := setupCatalogDB(t)
	seedProduct(t, db, 1, "12.5")

	resolver := newResolver(db, nil)
	ctx := workspacectx.WithWorkspaceID(context.Background(), testWorkspace)

	price, err := resolver.ResolvePrice(ctx, shippingdomain.ProductRef{ProductID: 1})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.5").Equal(price), price.String())

	price, err = resolver.ResolvePrice(ctx, shippingdomain.Amount{Value: decimal.NewFromInt(4)})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(4).Equal(price))

	price, err = resolver.ResolvePrice(ctx, nil)
	require.NoError(t, err)
	assert.True(t, price.IsZero())
}

func TestPriceResolver_MissingProductAndWorkspace(t *testing.T) {
	db := setupCatalogDB(t)
	resolver := newResolver(db, nil)

	_, err := resolver.ResolvePrice(context.Background(), shippingdomain.ProductRef{ProductID: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidWorkspace)

	ctx := workspacectx.WithWorkspaceID(context.Background(), testWorkspace)
	_, err = resolver.ResolvePrice(ctx, shippingdomain.ProductRef{ProductID: 99})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestPriceResolver_OtherWorkspaceIsInvisible(t *testing.T) {
	db := setupCatalogDB(t)
	seedProduct(t, db, 1, "12.5")

	resolver := newResolver(db, nil)
	ctx := workspacectx.WithWorkspaceID(context.Background(), snowflake.ID(200))
	_, err := resolver.ResolvePrice(ctx, shippingdomain.ProductRef{ProductID: 1})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestPriceResolver_ReadThroughCache(t *testing.T) {
	db := setupCatalogDB(t)
	seedProduct(t, db, 1, "12.5")

	cache := newMemoryCache()
	resolver := newResolver(db, cache)
	ctx := workspacectx.WithWorkspaceID(context.Background(), testWorkspace)

	_, err := resolver.ResolvePrice(ctx, shippingdomain.ProductRef{ProductID: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	require.NoError(t, db.Model(&domain.Product{}).Where("id = ?", 1).Update("price", decimal.NewFromInt(99)).Error)

	price, err := resolver.ResolvePrice(ctx, shippingdomain.ProductRef{ProductID: 1})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.5").Equal(price), "cached price should be served")
	assert.Equal(t, 1, cache.sets)
}

func TestPriceResolver_UnreachableRedisFallsBackToStore(t *testing.T) {
	db := setupCatalogDB(t)
	seedProduct(t, db, 1, "8")

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	resolver := newResolver(db, NewPriceCache(client))
	ctx := workspacectx.WithWorkspaceID(context.Background(), testWorkspace)

	price, err := resolver.ResolvePrice(ctx, shippingdomain.ProductRef{ProductID: 1})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(8).Equal(price))
}

func TestNewPriceCacheNilClient(t *testing.T) {
	assert.Nil(t, NewPriceCache(nil))
	assert.Equal(t, "catalog:price:1:2", priceKey(1, 2))
}

func TestEnrichLineItems(t *testing.T) {
	db := setupCatalogDB(t)
	seedProduct(t, db, 1, "10", 501, 502)
	seedProduct(t, db, 2, "20", 503)

	svc := New(Params{DB: db, Log: zap.NewNop(), Repo: repository.Provide()})

	items := []discountdomain.LineItem{
		{ProductID: 1, UnitPrice: decimal.NewFromInt(10), Quantity: 1},
		{ProductID: 2, UnitPrice: decimal.NewFromInt(20), Quantity: 1, CategoryIDs: []snowflake.ID{900}},
		{ProductID: 3, UnitPrice: decimal.NewFromInt(30), Quantity: 1},
	}

	out, err := svc.EnrichLineItems(context.Background(), testWorkspace, items)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []snowflake.ID{501, 502}, out[0].CategoryIDs)
	assert.Equal(t, []snowflake.ID{900}, out[1].CategoryIDs, "supplied membership is kept")
	assert.Empty(t, out[2].CategoryIDs)
	assert.Empty(t, items[0].CategoryIDs, "input is not mutated")

	_, err = svc.EnrichLineItems(context.Background(), 0, items)
	assert.ErrorIs(t, err, domain.ErrInvalidWorkspace)
}
