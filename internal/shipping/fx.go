package shipping

import (
	"github.com/smallbiznis/orderpricing/internal/shipping/repository"
	"github.com/smallbiznis/orderpricing/internal/shipping/service"
	"go.uber.org/fx"
)

var Module = fx.Module("shipping.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewResolver),
	fx.Provide(service.NewCalculator),
	fx.Provide(service.New),
)
