package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/orderpricing/internal/catalog/domain"
	checkoutdomain "github.com/smallbiznis/orderpricing/internal/checkout/domain"
	"github.com/smallbiznis/orderpricing/internal/config"
	discountdomain "github.com/smallbiznis/orderpricing/internal/discount/domain"
	"github.com/smallbiznis/orderpricing/internal/observability/logger"
	"github.com/smallbiznis/orderpricing/internal/observability/metrics"
	"github.com/smallbiznis/orderpricing/internal/observability/tracing"
	shippingdomain "github.com/smallbiznis/orderpricing/internal/shipping/domain"
	"github.com/smallbiznis/orderpricing/pkg/workspacectx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const tracerName = "github.com/smallbiznis/orderpricing/internal/checkout"

type Params struct {
	fx.In

	Log       *zap.Logger
	Catalog   catalogdomain.Service `optional:"true"`
	Discounts discountdomain.Service
	Shipping  shippingdomain.Service
	Settings  *config.PricingConfigHolder
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	catalog   catalogdomain.Service
	discounts discountdomain.Service
	shipping  shippingdomain.Service
	settings  *config.PricingConfigHolder
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

func New(p Params) checkoutdomain.Service {
	return &Service{
		log:       p.Log.Named("checkout.service"),
		catalog:   p.Catalog,
		discounts: p.Discounts,
		shipping:  p.Shipping,
		settings:  p.Settings,
		metrics:   p.Metrics,
		tracer:    otel.Tracer(tracerName),
	}
}

// Quote prices an order: line subtotals, then discounts, then shipping at
// the billing weight, then the order total.
func (s *Service) Quote(ctx context.Context, req checkoutdomain.QuoteRequest) (quote *checkoutdomain.Quote, err error) {
	started := time.Now()
	ctx, quoteID := tracing.EnsureQuoteID(ctx)
	ctx = workspacectx.WithWorkspaceID(ctx, req.WorkspaceID)

	ctx, span := s.tracer.Start(ctx, "checkout.quote", trace.WithAttributes(
		attribute.String("quote_id", quoteID),
		attribute.Int("items", len(req.Items)),
	))
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		s.metrics.RecordQuote(ctx, outcome, time.Since(started))
		span.End()
	}()

	if err := validate(req); err != nil {
		return nil, err
	}
	log := logger.WithContext(ctx, s.log)

	items := req.Items
	if s.catalog != nil {
		items, err = s.catalog.EnrichLineItems(ctx, req.WorkspaceID, items)
		if err != nil {
			return nil, err
		}
	}

	lines := make([]checkoutdomain.LineQuote, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		lineSubtotal := item.Subtotal()
		subtotal = subtotal.Add(lineSubtotal)
		lines = append(lines, checkoutdomain.LineQuote{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  lineSubtotal,
		})
	}

	result, err := s.discounts.CalculateOrderDiscount(ctx, discountdomain.CalculateRequest{
		WorkspaceID:  req.WorkspaceID,
		Items:        items,
		Subtotal:     subtotal,
		CouponCode:   req.CouponCode,
		GiftCardCode: req.GiftCardCode,
		CustomerID:   req.CustomerID,
	})
	if err != nil {
		return nil, err
	}

	var shippingQuote *shippingdomain.Quote
	shippingCost := decimal.Zero
	if req.ShippingMethod != "" {
		shippingQuote, err = s.shipping.Quote(ctx, shippingdomain.QuoteRequest{
			WorkspaceID: req.WorkspaceID,
			MethodCode:  req.ShippingMethod,
			Parcel:      req.Parcel,
			OrderAmount: subtotal,
			Destination: req.Destination,
		})
		if err != nil {
			return nil, err
		}
		shippingCost = shippingQuote.Cost
	}

	totals := ComputeTotals(checkoutdomain.TotalsInput{
		Subtotal:       subtotal,
		ShippingCost:   shippingCost,
		Tax:            req.Tax,
		Discount:       result.Discount,
		GiftCardAmount: result.GiftCardAmount,
		FreeShipping:   result.FreeShipping(),
	}, s.settings.Get().MoneyScale)

	span.SetAttributes(attribute.String("total", totals.Total.String()))
	log.Info("order quoted",
		zap.String("subtotal", totals.Subtotal.String()),
		zap.String("shipping_cost", totals.ShippingCost.String()),
		zap.String("effective_discount", totals.EffectiveDiscount.String()),
		zap.String("total", totals.Total.String()),
		zap.String("coupon_status", result.CouponStatus),
	)

	return &checkoutdomain.Quote{
		QuoteID:     quoteID,
		WorkspaceID: req.WorkspaceID,
		Lines:       lines,
		Shipping:    shippingQuote,
		Discount:    *result,
		Totals:      totals,
	}, nil
}

func validate(req checkoutdomain.QuoteRequest) error {
	if req.WorkspaceID == 0 {
		return checkoutdomain.ErrInvalidWorkspace
	}
	if len(req.Items) == 0 {
		return checkoutdomain.ErrEmptyOrder
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return checkoutdomain.ErrInvalidQuantity
		}
		if item.UnitPrice.IsNegative() {
			return checkoutdomain.ErrNegativeAmount
		}
	}
	if req.Tax.IsNegative() {
		return checkoutdomain.ErrNegativeAmount
	}
	return nil
}
