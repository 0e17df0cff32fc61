package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// PricingConfig holds engine settings that can change without a restart.
type PricingConfig struct {
	// FreeShippingSentinel is reported as the shipping discount when a
	// free-shipping rule applies.
	FreeShippingSentinel    decimal.Decimal
	DefaultVolumetricFactor decimal.Decimal
	AutoDiscountEnabled     bool
	MoneyScale              int32
	ProductPriceCacheTTL    time.Duration
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		FreeShippingSentinel:    decimal.RequireFromString("999999.00"),
		DefaultVolumetricFactor: decimal.NewFromInt(5000),
		AutoDiscountEnabled:     true,
		MoneyScale:              2,
		ProductPriceCacheTTL:    5 * time.Minute,
	}
}

type PricingConfigHolder struct {
	current atomic.Value // holds PricingConfig
}

// NewStaticPricingConfigHolder returns a holder that never reloads.
func NewStaticPricingConfigHolder(cfg PricingConfig) *PricingConfigHolder {
	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewPricingConfigHolder(appCfg Config) (*PricingConfigHolder, error) {
	v := viper.New()

	if appCfg.PricingConfigPath != "" {
		v.SetConfigFile(appCfg.PricingConfigPath)
	} else {
		v.SetConfigName("pricing")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/orderpricing")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ORDERPRICING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPricingConfig()
	v.SetDefault("pricing.freeShippingSentinel", defaults.FreeShippingSentinel.String())
	v.SetDefault("pricing.defaultVolumetricFactor", defaults.DefaultVolumetricFactor.String())
	v.SetDefault("pricing.autoDiscountEnabled", defaults.AutoDiscountEnabled)
	v.SetDefault("pricing.moneyScale", defaults.MoneyScale)
	v.SetDefault("pricing.productPriceCacheTTL", defaults.ProductPriceCacheTTL)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileFound = false
	}

	cfg, err := readPricingConfig(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticPricingConfigHolder(cfg)
	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := readPricingConfig(v)
		if err != nil {
			log.Printf("[pricing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[pricing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *PricingConfigHolder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}

func readPricingConfig(v *viper.Viper) (PricingConfig, error) {
	sentinel, err := decimal.NewFromString(strings.TrimSpace(v.GetString("pricing.freeShippingSentinel")))
	if err != nil {
		return PricingConfig{}, errors.New("pricing.freeShippingSentinel must be a decimal")
	}
	factor, err := decimal.NewFromString(strings.TrimSpace(v.GetString("pricing.defaultVolumetricFactor")))
	if err != nil {
		return PricingConfig{}, errors.New("pricing.defaultVolumetricFactor must be a decimal")
	}

	cfg := PricingConfig{
		FreeShippingSentinel:    sentinel,
		DefaultVolumetricFactor: factor,
		AutoDiscountEnabled:     v.GetBool("pricing.autoDiscountEnabled"),
		MoneyScale:              v.GetInt32("pricing.moneyScale"),
		ProductPriceCacheTTL:    v.GetDuration("pricing.productPriceCacheTTL"),
	}
	if err := validatePricingConfig(cfg); err != nil {
		return PricingConfig{}, err
	}
	return cfg, nil
}

func validatePricingConfig(cfg PricingConfig) error {
	if !cfg.FreeShippingSentinel.IsPositive() {
		return errors.New("pricing.freeShippingSentinel must be positive")
	}
	if cfg.DefaultVolumetricFactor.IsNegative() {
		return errors.New("pricing.defaultVolumetricFactor cannot be negative")
	}
	if cfg.MoneyScale < 0 || cfg.MoneyScale > 8 {
		return errors.New("pricing.moneyScale must be between 0 and 8")
	}
	return nil
}
