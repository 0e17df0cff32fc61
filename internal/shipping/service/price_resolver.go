package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	shippingdomain "github.com/smallbiznis/orderpricing/internal/shipping/domain"
)

// StaticPriceResolver resolves literal amounts and rejects product references.
type StaticPriceResolver struct{}

func (StaticPriceResolver) ResolvePrice(_ context.Context, ref shippingdomain.PriceRef) (decimal.Decimal, error) {
	switch typed := ref.(type) {
	case nil:
		return decimal.Zero, nil
	case shippingdomain.Amount:
		return typed.Value, nil
	case shippingdomain.ProductRef:
		return decimal.Zero, fmt.Errorf("%w: product %s", shippingdomain.ErrUnsupportedPriceReference, typed.ProductID)
	default:
		return decimal.Zero, shippingdomain.ErrUnsupportedPriceReference
	}
}
