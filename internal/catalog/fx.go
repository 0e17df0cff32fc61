package catalog

import (
	"github.com/smallbiznis/orderpricing/internal/catalog/repository"
	"github.com/smallbiznis/orderpricing/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewRedisClient),
	fx.Provide(service.NewPriceCache),
	fx.Provide(service.NewPriceResolver),
	fx.Provide(service.New),
)
