package domain

import "errors"

var (
	// ErrNoMatchingRule means a conditional config has no rule whose
	// conditions hold and no catch-all.
	ErrNoMatchingRule = errors.New("no_matching_rule")
	// ErrUnsupportedPriceReference means a price needs external resolution
	// that no resolver provided.
	ErrUnsupportedPriceReference = errors.New("unsupported_price_reference")

	ErrInvalidWorkspace       = errors.New("invalid_workspace")
	ErrInvalidWeight          = errors.New("invalid_weight")
	ErrInvalidPricingConfig   = errors.New("invalid_pricing_config")
	ErrShippingMethodNotFound = errors.New("shipping_method_not_found")
)
