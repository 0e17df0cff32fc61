package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	shippingdomain "github.com/smallbiznis/orderpricing/internal/shipping/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func cost(t *testing.T, weight string, rules shippingdomain.Rules) decimal.Decimal {
	t.Helper()
	got, err := BaseCost(context.Background(), d(weight), shippingdomain.Config{Mode: modeOf(rules), Rules: rules}, nil)
	require.NoError(t, err)
	return got
}

func modeOf(rules shippingdomain.Rules) shippingdomain.Mode {
	if rules == nil {
		return ""
	}
	return rules.Mode()
}

func TestBaseCost_LinearBaseRate(t *testing.T) {
	got := cost(t, "5", shippingdomain.BaseRate{Base: d("10"), PerKg: d("2")})
	assert.Equal(t, "20.00", got.StringFixed(2))
}

func TestBaseCost_LinearFixedPriceIgnoresWeight(t *testing.T) {
	got := cost(t, "250", shippingdomain.FixedPrice{Price: d("9.5")})
	assert.True(t, d("9.5").Equal(got))
}

func TestBaseCost_LinearUnitRate(t *testing.T) {
	rules := shippingdomain.UnitRate{
		FirstUnit:      shippingdomain.Amount{Value: d("8")},
		AdditionalUnit: shippingdomain.Amount{Value: d("3")},
	}
	assert.True(t, d("8").Equal(cost(t, "0.4", rules)))
	assert.True(t, d("8").Equal(cost(t, "1", rules)))
	assert.True(t, d("15.5").Equal(cost(t, "3.5", rules)))

	firstOnly := shippingdomain.UnitRate{FirstUnit: shippingdomain.Amount{Value: d("8")}}
	assert.True(t, d("8").Equal(cost(t, "4", firstOnly)))
}

func TestBaseCost_UnitRateRejectsProductRefWithoutResolver(t *testing.T) {
	rules := shippingdomain.UnitRate{FirstUnit: shippingdomain.ProductRef{ProductID: 42}}
	_, err := BaseCost(context.Background(), d("1"), shippingdomain.Config{Mode: shippingdomain.ModeLinear, Rules: rules}, nil)
	assert.ErrorIs(t, err, shippingdomain.ErrUnsupportedPriceReference)
}

func TestBaseCost_DecodedProductRefFailsFast(t *testing.T) {
	cfg, err := shippingdomain.DecodeConfig([]byte(`{"mode":"linear","rules":{"first_unit":{"product_id":"42"},"additional_unit":{"product_id":"42"}}}`))
	require.NoError(t, err)

	got, err := BaseCost(context.Background(), d("3"), cfg, nil)
	assert.ErrorIs(t, err, shippingdomain.ErrUnsupportedPriceReference)
	assert.True(t, got.IsZero())
}

type fixedPrices struct{ price decimal.Decimal }

func (f fixedPrices) ResolvePrice(context.Context, shippingdomain.PriceRef) (decimal.Decimal, error) {
	return f.price, nil
}

func TestBaseCost_UnitRateUsesResolver(t *testing.T) {
	rules := shippingdomain.UnitRate{
		FirstUnit:      shippingdomain.ProductRef{ProductID: 1},
		AdditionalUnit: shippingdomain.ProductRef{ProductID: 2},
	}
	got, err := BaseCost(context.Background(), d("2"), shippingdomain.Config{Rules: rules}, fixedPrices{price: d("4")})
	require.NoError(t, err)
	assert.True(t, d("8").Equal(got))
}

func TestBaseCost_LinearPerWeightFloorsAtMinCharge(t *testing.T) {
	rules := shippingdomain.PerWeight{UnitPrice: d("1.5"), MinCharge: d("10")}
	assert.True(t, d("10").Equal(cost(t, "2", rules)))
	assert.True(t, d("30").Equal(cost(t, "20", rules)))
	assert.True(t, cost(t, "20", shippingdomain.PerWeight{}).IsZero())
}

func TestBaseCost_Step(t *testing.T) {
	rules := shippingdomain.StepRate{
		FirstWeight:      d("1"),
		FirstPrice:       d("10"),
		AdditionalWeight: d("1"),
		AdditionalPrice:  d("5"),
	}
	assert.Equal(t, "25.00", cost(t, "3.2", rules).StringFixed(2))
	assert.Equal(t, "10.00", cost(t, "1", rules).StringFixed(2))
	assert.Equal(t, "15.00", cost(t, "1.01", rules).StringFixed(2))
	assert.Equal(t, "20.00", cost(t, "3", rules).StringFixed(2))
}

func TestBaseCost_StepNonPositiveIncrementCountsAsOne(t *testing.T) {
	rules := shippingdomain.StepRate{FirstWeight: d("1"), FirstPrice: d("10"), AdditionalPrice: d("5")}
	assert.Equal(t, "25.00", cost(t, "3.2", rules).StringFixed(2))
}

func TestBaseCost_TierTable(t *testing.T) {
	rules := shippingdomain.TierTable{Tiers: []shippingdomain.WeightTier{
		{MaxKg: d("10"), Price: d("25")},
		{MaxKg: d("5"), Price: d("15")},
	}}
	assert.Equal(t, "15.00", cost(t, "5", rules).StringFixed(2))
	assert.Equal(t, "25.00", cost(t, "7", rules).StringFixed(2))
	assert.Equal(t, "25.00", cost(t, "20", rules).StringFixed(2))
	assert.Equal(t, d("10"), rules.Tiers[0].MaxKg, "input order is not mutated")
	assert.True(t, cost(t, "1", shippingdomain.TierTable{}).IsZero())
}

func TestBaseCost_RangeTable(t *testing.T) {
	upper := d("5")
	perWeight := shippingdomain.RangeTable{
		MatchType: shippingdomain.MatchPerWeight,
		Ranges: []shippingdomain.RangeTier{
			{Min: d("0"), Max: &upper, Price: d("3")},
			{Min: d("5"), Price: d("2")},
		},
	}
	assert.True(t, d("12").Equal(cost(t, "4", perWeight)))
	assert.True(t, d("10").Equal(cost(t, "5", perWeight)), "max is exclusive")
	assert.True(t, d("200").Equal(cost(t, "100", perWeight)), "missing max is unbounded")

	fixed := perWeight
	fixed.MatchType = shippingdomain.MatchFixedPrice
	assert.True(t, d("3").Equal(cost(t, "4", fixed)))
}

func TestBaseCost_RangeTableUncoveredWeightIsZero(t *testing.T) {
	upper := d("5")
	rules := shippingdomain.RangeTable{
		MatchType: shippingdomain.MatchPerWeight,
		Ranges:    []shippingdomain.RangeTier{{Min: d("1"), Max: &upper, Price: d("3")}},
	}
	assert.Equal(t, "0.00", cost(t, "0.5", rules).StringFixed(2))
	assert.Equal(t, "0.00", cost(t, "9", rules).StringFixed(2))
}

func TestBaseCost_UnknownModeIsZero(t *testing.T) {
	got, err := BaseCost(context.Background(), d("5"), shippingdomain.Config{Mode: "zonal"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "0.00", got.StringFixed(2))

	calc := NewCalculator(CalculatorParams{Log: zap.NewNop()})
	got, err = calc.BaseCost(context.Background(), d("5"), shippingdomain.Config{Mode: "zonal"})
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestStaticPriceResolver(t *testing.T) {
	r := StaticPriceResolver{}
	got, err := r.ResolvePrice(context.Background(), shippingdomain.Amount{Value: d("4.25")})
	require.NoError(t, err)
	assert.True(t, d("4.25").Equal(got))

	got, err = r.ResolvePrice(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = r.ResolvePrice(context.Background(), shippingdomain.ProductRef{ProductID: 7})
	assert.ErrorIs(t, err, shippingdomain.ErrUnsupportedPriceReference)
}
