package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/orderpricing/internal/catalog/domain"
	"github.com/smallbiznis/orderpricing/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyProductPrice = "catalog:price:%s:%s"

// NewRedisClient returns nil when no redis address is configured, which
// disables the product price cache.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) redis.UniversalClient {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
	}

	log.Info("product price cache enabled", zap.String("addr", addr))
	return client
}

type redisPriceCache struct {
	client redis.UniversalClient
}

// NewPriceCache wraps client as a PriceCache, or returns nil for a nil client.
func NewPriceCache(client redis.UniversalClient) domain.PriceCache {
	if client == nil {
		return nil
	}
	return &redisPriceCache{client: client}
}

func (c *redisPriceCache) Get(ctx context.Context, workspaceID, productID snowflake.ID) (decimal.Decimal, bool, error) {
	raw, err := c.client.Get(ctx, priceKey(workspaceID, productID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("decode cached price: %w", err)
	}
	return price, true, nil
}

func (c *redisPriceCache) Set(ctx context.Context, workspaceID, productID snowflake.ID, price decimal.Decimal, ttl time.Duration) error {
	return c.client.Set(ctx, priceKey(workspaceID, productID), price.String(), ttl).Err()
}

func priceKey(workspaceID, productID snowflake.ID) string {
	return fmt.Sprintf(keyProductPrice, workspaceID.String(), productID.String())
}
