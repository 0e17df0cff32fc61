package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	shippingdomain "github.com/smallbiznis/orderpricing/internal/shipping/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var one = decimal.NewFromInt(1)

type CalculatorParams struct {
	fx.In

	Log    *zap.Logger
	Prices shippingdomain.PriceResolver `optional:"true"`
}

type Calculator struct {
	log    *zap.Logger
	prices shippingdomain.PriceResolver
}

func NewCalculator(p CalculatorParams) shippingdomain.Calculator {
	return &Calculator{
		log:    p.Log.Named("shipping.calculator"),
		prices: p.Prices,
	}
}

func (c *Calculator) BaseCost(ctx context.Context, weight decimal.Decimal, cfg shippingdomain.Config) (decimal.Decimal, error) {
	if cfg.Rules == nil {
		c.log.Debug("pricing config has no computable rules", zap.String("mode", string(cfg.Mode)))
	}
	return BaseCost(ctx, weight, cfg, c.prices)
}

// BaseCost computes the cost of shipping weight under a resolved config.
// A nil prices uses StaticPriceResolver. Configs without rules (unknown
// mode, unresolved conditional) cost zero.
func BaseCost(ctx context.Context, weight decimal.Decimal, cfg shippingdomain.Config, prices shippingdomain.PriceResolver) (decimal.Decimal, error) {
	if prices == nil {
		prices = StaticPriceResolver{}
	}

	switch rules := cfg.Rules.(type) {
	case shippingdomain.FixedPrice:
		return rules.Price, nil
	case shippingdomain.BaseRate:
		return rules.Base.Add(weight.Mul(rules.PerKg)), nil
	case shippingdomain.UnitRate:
		return unitRateCost(ctx, weight, rules, prices)
	case shippingdomain.PerWeight:
		return decimal.Max(weight.Mul(rules.UnitPrice), rules.MinCharge), nil
	case shippingdomain.StepRate:
		return stepCost(weight, rules), nil
	case shippingdomain.TierTable:
		return tierCost(weight, rules), nil
	case shippingdomain.RangeTable:
		return rangeCost(weight, rules), nil
	default:
		return decimal.Zero, nil
	}
}

func unitRateCost(ctx context.Context, weight decimal.Decimal, rules shippingdomain.UnitRate, prices shippingdomain.PriceResolver) (decimal.Decimal, error) {
	first, err := resolveRef(ctx, prices, rules.FirstUnit)
	if err != nil {
		return decimal.Zero, err
	}
	if weight.LessThanOrEqual(one) {
		return first, nil
	}

	additional, err := resolveRef(ctx, prices, rules.AdditionalUnit)
	if err != nil {
		return decimal.Zero, err
	}
	return first.Add(weight.Sub(one).Mul(additional)), nil
}

func resolveRef(ctx context.Context, prices shippingdomain.PriceResolver, ref shippingdomain.PriceRef) (decimal.Decimal, error) {
	if ref == nil {
		return decimal.Zero, nil
	}
	return prices.ResolvePrice(ctx, ref)
}

// stepCost bills every started increment above FirstWeight in full. A
// non-positive AdditionalWeight is treated as one unit.
func stepCost(weight decimal.Decimal, rules shippingdomain.StepRate) decimal.Decimal {
	if weight.LessThanOrEqual(rules.FirstWeight) {
		return rules.FirstPrice
	}

	step := rules.AdditionalWeight
	if !step.IsPositive() {
		step = one
	}
	increments := weight.Sub(rules.FirstWeight).Div(step).Ceil()
	return rules.FirstPrice.Add(increments.Mul(rules.AdditionalPrice))
}

// tierCost returns the first tier covering weight, or the last tier when
// weight exceeds every tier.
func tierCost(weight decimal.Decimal, rules shippingdomain.TierTable) decimal.Decimal {
	if len(rules.Tiers) == 0 {
		return decimal.Zero
	}

	tiers := make([]shippingdomain.WeightTier, len(rules.Tiers))
	copy(tiers, rules.Tiers)
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MaxKg.LessThan(tiers[j].MaxKg)
	})

	for _, tier := range tiers {
		if tier.MaxKg.GreaterThanOrEqual(weight) {
			return tier.Price
		}
	}
	return tiers[len(tiers)-1].Price
}

// rangeCost returns zero when no range covers weight.
// TODO: confirm with product whether uncovered weights should fail instead of billing zero.
func rangeCost(weight decimal.Decimal, rules shippingdomain.RangeTable) decimal.Decimal {
	for _, tier := range rules.Ranges {
		if weight.LessThan(tier.Min) {
			continue
		}
		if tier.Max != nil && !weight.LessThan(*tier.Max) {
			continue
		}
		if rules.MatchType == shippingdomain.MatchFixedPrice {
			return tier.Price
		}
		return weight.Mul(tier.Price)
	}
	return decimal.Zero
}
