package migration

import (
	"strings"

	catalogdomain "github.com/smallbiznis/orderpricing/internal/catalog/domain"
	"github.com/smallbiznis/orderpricing/internal/config"
	discountdomain "github.com/smallbiznis/orderpricing/internal/discount/domain"
	shippingdomain "github.com/smallbiznis/orderpricing/internal/shipping/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if strings.EqualFold(strings.TrimSpace(cfg.DBType), "postgres") {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB, log)
		}

		log.Info("auto-migrating schema", zap.String("type", cfg.DBType))
		return AutoMigrate(conn)
	}),
)

// AutoMigrate creates the schema from the models for databases without
// embedded SQL migrations (mysql, sqlite).
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&shippingdomain.ShippingMethod{},
		&discountdomain.DiscountRule{},
		&discountdomain.Coupon{},
		&discountdomain.CouponRedemption{},
		&discountdomain.GiftCard{},
		&catalogdomain.Product{},
	)
}
