package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/orderpricing/internal/condition"
	"github.com/smallbiznis/orderpricing/internal/config"
	shippingdomain "github.com/smallbiznis/orderpricing/internal/shipping/domain"
	"github.com/smallbiznis/orderpricing/pkg/workspacectx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Repo       shippingdomain.Repository
	Resolver   shippingdomain.Resolver
	Calculator shippingdomain.Calculator
	Settings   *config.PricingConfigHolder
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	repo       shippingdomain.Repository
	resolver   shippingdomain.Resolver
	calculator shippingdomain.Calculator
	settings   *config.PricingConfigHolder
}

func New(p Params) shippingdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("shipping.service"),
		repo:       p.Repo,
		resolver:   p.Resolver,
		calculator: p.Calculator,
		settings:   p.Settings,
	}
}

func (s *Service) Quote(ctx context.Context, req shippingdomain.QuoteRequest) (*shippingdomain.Quote, error) {
	if req.WorkspaceID == 0 {
		return nil, shippingdomain.ErrInvalidWorkspace
	}
	if req.Parcel.Weight.IsNegative() {
		return nil, shippingdomain.ErrInvalidWeight
	}
	ctx = workspacectx.WithWorkspaceID(ctx, req.WorkspaceID)

	method, err := s.repo.FindActiveByCode(ctx, s.db, req.WorkspaceID, req.MethodCode)
	if err != nil {
		return nil, err
	}
	if method == nil {
		return nil, shippingdomain.ErrShippingMethodNotFound
	}

	cfg, err := method.Config()
	if err != nil {
		return nil, err
	}

	factor := method.VolumetricFactor
	if !factor.Valid {
		factor = s.defaultVolumetricFactor()
	}
	weight := ParcelBillingWeight(req.Parcel, factor)

	vars := condition.FreightContext(weight, req.OrderAmount)
	if destination := strings.TrimSpace(req.Destination); destination != "" {
		vars = vars.With(condition.FieldFreightDestination, destination)
	}

	resolved, err := s.resolver.Resolve(ctx, cfg, vars)
	if err != nil {
		return nil, err
	}

	cost, err := s.calculator.BaseCost(ctx, weight, resolved)
	if err != nil {
		return nil, err
	}

	s.log.Debug("shipping quoted",
		zap.String("method", method.Code),
		zap.String("mode", string(resolved.Mode)),
		zap.String("billing_weight", weight.String()),
		zap.String("cost", cost.String()),
	)

	return &shippingdomain.Quote{
		MethodID:      method.ID.String(),
		MethodCode:    method.Code,
		Mode:          resolved.Mode,
		BillingWeight: weight,
		Cost:          cost,
		MinCharge:     resolved.MinCharge,
		Surcharges:    resolved.Surcharges,
		Discounts:     resolved.Discounts,
	}, nil
}

func (s *Service) defaultVolumetricFactor() decimal.NullDecimal {
	if s.settings == nil {
		return decimal.NullDecimal{}
	}
	factor := s.settings.Get().DefaultVolumetricFactor
	if !factor.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(factor)
}
