package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/orderpricing/internal/clock"
	"github.com/smallbiznis/orderpricing/internal/config"
	discountdomain "github.com/smallbiznis/orderpricing/internal/discount/domain"
	"github.com/smallbiznis/orderpricing/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sourceCoupon   = "coupon"
	sourceAuto     = "auto"
	sourceGiftCard = "gift_card"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     discountdomain.Repository
	Clock    clock.Clock
	Settings *config.PricingConfigHolder
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     discountdomain.Repository
	clock    clock.Clock
	settings *config.PricingConfigHolder
	metrics  *metrics.Metrics
}

func New(p Params) discountdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("discount.service"),
		repo:     p.Repo,
		clock:    p.Clock,
		settings: p.Settings,
		metrics:  p.Metrics,
	}
}

// CalculateOrderDiscount resolves the coupon (or, without one, the best
// automatic discount) and then the gift card for an order. Invalid coupons
// and unusable gift cards yield zero; only lookup failures are returned.
func (s *Service) CalculateOrderDiscount(ctx context.Context, req discountdomain.CalculateRequest) (*discountdomain.Result, error) {
	if req.WorkspaceID == 0 {
		return nil, discountdomain.ErrInvalidWorkspace
	}
	if req.Subtotal.IsNegative() {
		return nil, discountdomain.ErrNegativeAmount
	}

	result := &discountdomain.Result{
		Discount:         decimal.Zero,
		ShippingDiscount: decimal.Zero,
		CouponDiscount:   decimal.Zero,
		GiftCardAmount:   decimal.Zero,
	}
	settings := s.settings.Get()

	if code := normalizeCode(req.CouponCode); code != "" {
		if err := s.applyCoupon(ctx, req, code, settings, result); err != nil {
			return nil, err
		}
	} else if settings.AutoDiscountEnabled {
		if err := s.applyAutoDiscount(ctx, req, settings, result); err != nil {
			return nil, err
		}
	}

	if code := normalizeCode(req.GiftCardCode); code != "" {
		if err := s.applyGiftCard(ctx, req, code, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (s *Service) ValidateCoupon(ctx context.Context, req discountdomain.ValidateCouponRequest) (*discountdomain.Coupon, error) {
	if req.WorkspaceID == 0 {
		return nil, discountdomain.ErrInvalidWorkspace
	}
	coupon, _, err := s.validCoupon(ctx, discountdomain.CalculateRequest{
		WorkspaceID: req.WorkspaceID,
		Subtotal:    req.Subtotal,
		CustomerID:  req.CustomerID,
	}, normalizeCode(req.Code))
	if err != nil {
		return nil, err
	}
	return coupon, nil
}

func (s *Service) applyCoupon(ctx context.Context, req discountdomain.CalculateRequest, code string, settings config.PricingConfig, result *discountdomain.Result) error {
	coupon, rule, err := s.validCoupon(ctx, req, code)
	if err != nil {
		if !discountdomain.IsCouponValidityErr(err) {
			return err
		}
		s.log.Debug("coupon rejected",
			zap.String("workspace_id", req.WorkspaceID.String()),
			zap.String("code", code),
			zap.Error(err),
		)
		result.CouponStatus = err.Error()
		s.metrics.RecordDiscount(ctx, sourceCoupon, err.Error())
		return nil
	}

	amount, freeShipping := RuleDiscount(*rule, req.Items, req.Subtotal)
	amount = s.round(amount, settings, req.Subtotal)
	if freeShipping {
		result.ShippingDiscount = settings.FreeShippingSentinel
	}
	result.Discount = amount
	result.CouponDiscount = amount
	result.CouponID = &coupon.ID
	result.AppliedRuleID = &rule.ID
	result.CouponStatus = discountdomain.CouponStatusApplied

	s.metrics.RecordDiscount(ctx, sourceCoupon, discountdomain.CouponStatusApplied)
	return nil
}

func (s *Service) validCoupon(ctx context.Context, req discountdomain.CalculateRequest, code string) (*discountdomain.Coupon, *discountdomain.DiscountRule, error) {
	if code == "" {
		return nil, nil, discountdomain.ErrCouponNotFound
	}

	coupon, err := s.repo.FindActiveCouponByCode(ctx, s.db, req.WorkspaceID, code)
	if err != nil {
		return nil, nil, err
	}
	if coupon == nil {
		return nil, nil, discountdomain.ErrCouponNotFound
	}

	rule, err := s.repo.FindActiveRuleByID(ctx, s.db, req.WorkspaceID, coupon.DiscountRuleID)
	if err != nil {
		return nil, nil, err
	}
	if rule == nil {
		return nil, nil, discountdomain.ErrCouponNotFound
	}

	var customerUses *int64
	if req.CustomerID != nil && coupon.UsageLimitPerCustomer != nil {
		count, err := s.repo.CountCustomerRedemptions(ctx, s.db, coupon.ID, *req.CustomerID)
		if err != nil {
			return nil, nil, err
		}
		customerUses = &count
	}

	if err := coupon.Check(*rule, req.Subtotal, s.clock.Now(), customerUses); err != nil {
		return nil, nil, err
	}
	return coupon, rule, nil
}

// applyAutoDiscount keeps the largest monetary discount among active rules,
// newest first, and waives shipping if any eligible rule grants it.
func (s *Service) applyAutoDiscount(ctx context.Context, req discountdomain.CalculateRequest, settings config.PricingConfig, result *discountdomain.Result) error {
	rules, err := s.repo.ListActiveRules(ctx, s.db, req.WorkspaceID)
	if err != nil {
		return err
	}

	best := decimal.Zero
	for i := range rules {
		amount, freeShipping := RuleDiscount(rules[i], req.Items, req.Subtotal)
		if freeShipping {
			result.ShippingDiscount = settings.FreeShippingSentinel
		}
		if amount.GreaterThan(best) {
			best = amount
			result.AppliedRuleID = &rules[i].ID
		}
	}

	result.Discount = s.round(best, settings, req.Subtotal)
	if result.AppliedRuleID != nil || result.FreeShipping() {
		s.metrics.RecordDiscount(ctx, sourceAuto, "applied")
	}
	return nil
}

func (s *Service) applyGiftCard(ctx context.Context, req discountdomain.CalculateRequest, code string, result *discountdomain.Result) error {
	card, err := s.repo.FindActiveGiftCardByCode(ctx, s.db, req.WorkspaceID, code)
	if err != nil {
		return err
	}
	if card == nil || !card.Usable(s.clock.Now()) {
		s.log.Debug("gift card not usable",
			zap.String("workspace_id", req.WorkspaceID.String()),
			zap.String("code", code),
		)
		s.metrics.RecordDiscount(ctx, sourceGiftCard, "unusable")
		return nil
	}

	remaining := req.Subtotal.Sub(result.Discount)
	amount := decimal.Max(decimal.Min(card.Balance, remaining), decimal.Zero)
	result.GiftCardAmount = amount
	result.GiftCardID = &card.ID

	s.metrics.RecordDiscount(ctx, sourceGiftCard, "applied")
	return nil
}

func (s *Service) round(amount decimal.Decimal, settings config.PricingConfig, subtotal decimal.Decimal) decimal.Decimal {
	return decimal.Min(amount.Round(settings.MoneyScale), subtotal)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
