package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/orderpricing/internal/condition"
	"github.com/smallbiznis/orderpricing/internal/config"
	shippingdomain "github.com/smallbiznis/orderpricing/internal/shipping/domain"
	"github.com/smallbiznis/orderpricing/internal/shipping/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const testWorkspace = snowflake.ID(10)

func setupShippingService(t *testing.T) (shippingdomain.Service, *gorm.DB) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&shippingdomain.ShippingMethod{}))

	log := zap.NewNop()
	svc := New(Params{
		DB:         db,
		Log:        log,
		Repo:       repository.Provide(),
		Resolver:   NewResolver(ResolverParams{Log: log, Evaluator: condition.NewLocalEvaluator()}),
		Calculator: NewCalculator(CalculatorParams{Log: log}),
		Settings:   config.NewStaticPricingConfigHolder(config.DefaultPricingConfig()),
	})
	return svc, db
}

func seedMethod(t *testing.T, db *gorm.DB, id snowflake.ID, code, pricing string, factor decimal.NullDecimal, active bool) {
	t.Helper()
	method := shippingdomain.ShippingMethod{
		ID:               id,
		WorkspaceID:      testWorkspace,
		Code:             code,
		Name:             code,
		Pricing:          datatypes.JSON(pricing),
		VolumetricFactor: factor,
		IsActive:         true,
	}
	require.NoError(t, db.Create(&method).Error)
	if !active {
		require.NoError(t, db.Model(&method).Update("is_active", false).Error)
	}
}

func TestQuote_LinearWithVolumetricWeight(t *testing.T) {
	svc, db := setupShippingService(t)
	seedMethod(t, db, 1, "jne-reg", `{"mode":"linear","rules":{"base":10,"per_kg":2}}`, decimal.NullDecimal{}, true)

	quote, err := svc.Quote(context.Background(), shippingdomain.QuoteRequest{
		WorkspaceID: testWorkspace,
		MethodCode:  "JNE Reg",
		Parcel: shippingdomain.Parcel{
			Weight: d("2"),
			Length: nd("50"),
			Width:  nd("40"),
			Height: nd("30"),
		},
		OrderAmount: d("100"),
	})
	require.NoError(t, err)
	assert.Equal(t, "jne-reg", quote.MethodCode)
	assert.Equal(t, shippingdomain.ModeLinear, quote.Mode)
	assert.True(t, d("12").Equal(quote.BillingWeight), "default factor 5000 applies")
	assert.True(t, d("34").Equal(quote.Cost))
}

func TestQuote_MethodFactorOverridesDefault(t *testing.T) {
	svc, db := setupShippingService(t)
	seedMethod(t, db, 1, "cargo", `{"mode":"linear","rules":{"base":0,"per_kg":1}}`, nd("6000"), true)

	quote, err := svc.Quote(context.Background(), shippingdomain.QuoteRequest{
		WorkspaceID: testWorkspace,
		MethodCode:  "cargo",
		Parcel:      shippingdomain.Parcel{Weight: d("1"), Length: nd("60"), Width: nd("50"), Height: nd("40")},
	})
	require.NoError(t, err)
	assert.True(t, d("20").Equal(quote.BillingWeight))
	assert.True(t, d("20").Equal(quote.Cost))
}

func TestQuote_ConditionalUsesOrderAmount(t *testing.T) {
	svc, db := setupShippingService(t)
	seedMethod(t, db, 1, "std", `{
		"mode": "conditional",
		"pricing_rules": [
			{"priority": 1, "conditions": [{"type":"order_amount_gte","value":500}], "pricing": {"type":"free"}},
			{"priority": 2, "pricing": {"type":"linear","base":10,"per_kg":2}}
		]
	}`, decimal.NullDecimal{}, true)

	req := shippingdomain.QuoteRequest{
		WorkspaceID: testWorkspace,
		MethodCode:  "std",
		Parcel:      shippingdomain.Parcel{Weight: d("5")},
		OrderAmount: d("499.99"),
	}
	quote, err := svc.Quote(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, d("20").Equal(quote.Cost))

	req.OrderAmount = d("500")
	quote, err = svc.Quote(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, quote.Cost.IsZero())
}

func TestQuote_NoMatchingRule(t *testing.T) {
	svc, db := setupShippingService(t)
	seedMethod(t, db, 1, "heavy", `{
		"mode": "conditional",
		"pricing_rules": [{"priority": 1, "conditions": [{"type":"weight_gte","value":100}], "pricing": {"type":"free"}}]
	}`, decimal.NullDecimal{}, true)

	_, err := svc.Quote(context.Background(), shippingdomain.QuoteRequest{
		WorkspaceID: testWorkspace,
		MethodCode:  "heavy",
		Parcel:      shippingdomain.Parcel{Weight: d("5")},
	})
	assert.ErrorIs(t, err, shippingdomain.ErrNoMatchingRule)
}

func TestQuote_Validation(t *testing.T) {
	svc, db := setupShippingService(t)
	seedMethod(t, db, 1, "retired", `{"mode":"linear","rules":{"fixed_price":5}}`, decimal.NullDecimal{}, false)

	_, err := svc.Quote(context.Background(), shippingdomain.QuoteRequest{MethodCode: "retired"})
	assert.ErrorIs(t, err, shippingdomain.ErrInvalidWorkspace)

	_, err = svc.Quote(context.Background(), shippingdomain.QuoteRequest{
		WorkspaceID: testWorkspace,
		MethodCode:  "retired",
		Parcel:      shippingdomain.Parcel{Weight: d("-1")},
	})
	assert.ErrorIs(t, err, shippingdomain.ErrInvalidWeight)

	_, err = svc.Quote(context.Background(), shippingdomain.QuoteRequest{
		WorkspaceID: testWorkspace,
		MethodCode:  "retired",
		Parcel:      shippingdomain.Parcel{Weight: d("1")},
	})
	assert.ErrorIs(t, err, shippingdomain.ErrShippingMethodNotFound, "inactive methods are invisible")
}

func TestQuote_MalformedProductReferenceIsRejected(t *testing.T) {
	svc, db := setupShippingService(t)
	seedMethod(t, db, 1, "unit", `{"mode":"linear","rules":{"first_unit":{"product_id":"sku-42"},"additional_unit":{"product_id":"sku-42"}}}`, decimal.NullDecimal{}, true)

	quote, err := svc.Quote(context.Background(), shippingdomain.QuoteRequest{
		WorkspaceID: testWorkspace,
		MethodCode:  "unit",
		Parcel:      shippingdomain.Parcel{Weight: d("3")},
	})
	assert.ErrorIs(t, err, shippingdomain.ErrInvalidPricingConfig)
	assert.Nil(t, quote)
}

func TestQuote_StoredCodeIsSlugged(t *testing.T) {
	svc, db := setupShippingService(t)
	seedMethod(t, db, 1, "JNE Reg", `{"mode":"linear","rules":{"base":10,"per_kg":0}}`, decimal.NullDecimal{}, true)

	var stored shippingdomain.ShippingMethod
	require.NoError(t, db.First(&stored, 1).Error)
	assert.Equal(t, "jne-reg", stored.Code)

	quote, err := svc.Quote(context.Background(), shippingdomain.QuoteRequest{
		WorkspaceID: testWorkspace,
		MethodCode:  "jne reg",
		Parcel:      shippingdomain.Parcel{Weight: d("1")},
	})
	require.NoError(t, err)
	assert.Equal(t, "jne-reg", quote.MethodCode)
	assert.True(t, d("10").Equal(quote.Cost))
}
