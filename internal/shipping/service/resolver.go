package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/smallbiznis/orderpricing/internal/condition"
	"github.com/smallbiznis/orderpricing/internal/observability/metrics"
	shippingdomain "github.com/smallbiznis/orderpricing/internal/shipping/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ResolverParams struct {
	fx.In

	Log       *zap.Logger
	Evaluator condition.Evaluator
	Metrics   *metrics.Metrics `optional:"true"`
}

type Resolver struct {
	log       *zap.Logger
	evaluator condition.Evaluator
	metrics   *metrics.Metrics
}

func NewResolver(p ResolverParams) shippingdomain.Resolver {
	return &Resolver{
		log:       p.Log.Named("shipping.resolver"),
		evaluator: p.Evaluator,
		metrics:   p.Metrics,
	}
}

// Resolve picks the first pricing rule, by ascending priority and then list
// order, whose conditions hold for vars and reduces it to a linear config.
func (r *Resolver) Resolve(ctx context.Context, cfg shippingdomain.Config, vars condition.Context) (shippingdomain.Config, error) {
	if !cfg.IsConditional() {
		return cfg, nil
	}

	ordered := make([]shippingdomain.PricingRule, len(cfg.PricingRules))
	copy(ordered, cfg.PricingRules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	for i := range ordered {
		rule := ordered[i]
		tree := condition.Normalize(rule.Conditions)
		if tree == nil {
			r.metrics.RecordRuleResolution(ctx, "catch_all")
			return reduce(cfg, rule), nil
		}

		ok, err := r.evaluator.Evaluate(ctx, *tree, vars)
		if err != nil {
			r.metrics.RecordRuleResolution(ctx, "error")
			return shippingdomain.Config{}, fmt.Errorf("evaluate pricing rule priority %d: %w", rule.Priority, err)
		}
		if ok {
			r.metrics.RecordRuleResolution(ctx, "matched")
			return reduce(cfg, rule), nil
		}
	}

	r.metrics.RecordRuleResolution(ctx, "no_match")
	r.log.Info("no pricing rule matched", zap.Int("rules", len(ordered)))
	return shippingdomain.Config{}, shippingdomain.ErrNoMatchingRule
}

func reduce(cfg shippingdomain.Config, rule shippingdomain.PricingRule) shippingdomain.Config {
	surcharges := rule.Surcharges
	if len(surcharges) == 0 {
		surcharges = cfg.Surcharges
	}

	return shippingdomain.Config{
		Mode:       shippingdomain.ModeLinear,
		Rules:      pricingRules(rule.Pricing),
		MinCharge:  rule.MinCharge,
		Surcharges: surcharges,
		Discounts:  rule.Discounts,
	}
}

func pricingRules(p shippingdomain.Pricing) shippingdomain.Rules {
	switch {
	case p.Type == shippingdomain.PricingFree:
		return shippingdomain.FixedPrice{}
	case p.Type == shippingdomain.PricingLinear && p.Base.Valid && p.PerKg.Valid:
		return shippingdomain.BaseRate{Base: p.Base.Decimal, PerKg: p.PerKg.Decimal}
	default:
		return shippingdomain.UnitRate{FirstUnit: p.FirstUnit, AdditionalUnit: p.AdditionalUnit}
	}
}
