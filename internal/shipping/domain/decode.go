package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/orderpricing/internal/condition"
)

type wireConfig struct {
	Mode         string          `json:"mode"`
	Rules        json.RawMessage `json:"rules"`
	MatchType    string          `json:"match_type"`
	MinCharge    json.RawMessage `json:"min_charge"`
	Surcharges   json.RawMessage `json:"surcharges"`
	Discounts    json.RawMessage `json:"discounts"`
	PricingRules []wireRule      `json:"pricing_rules"`
}

type wireRule struct {
	Priority   int             `json:"priority"`
	Conditions json.RawMessage `json:"conditions"`
	Pricing    json.RawMessage `json:"pricing"`
	MinCharge  json.RawMessage `json:"min_charge"`
	Surcharges json.RawMessage `json:"surcharges"`
	Discounts  json.RawMessage `json:"discounts"`
}

// DecodeConfig parses a stored pricing payload into a typed Config. The
// linear precedence fixed_price > base+per_kg > first/additional unit >
// per-weight fallback is settled here.
func DecodeConfig(data []byte) (Config, error) {
	var wire wireConfig
	if err := json.Unmarshal(data, &wire); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidPricingConfig, err)
	}

	rules, err := parseValue(wire.Rules)
	if err != nil {
		return Config{}, fmt.Errorf("%w: rules: %v", ErrInvalidPricingConfig, err)
	}
	minCharge, err := parseValue(wire.MinCharge)
	if err != nil {
		return Config{}, fmt.Errorf("%w: min_charge: %v", ErrInvalidPricingConfig, err)
	}

	cfg := Config{
		Mode:       Mode(strings.ToLower(strings.TrimSpace(wire.Mode))),
		MinCharge:  nullDecimal(minCharge),
		Surcharges: nonNull(wire.Surcharges),
		Discounts:  nonNull(wire.Discounts),
	}

	switch cfg.Mode {
	case ModeLinear:
		cfg.Rules, err = decodeLinear(asObject(rules), cfg.MinCharge)
		if err != nil {
			return Config{}, fmt.Errorf("%w: rules: %v", ErrInvalidPricingConfig, err)
		}
	case ModeStep:
		cfg.Rules = decodeStep(asObject(rules))
	case ModeTier:
		cfg.Rules = decodeTier(rules, MatchType(strings.ToLower(strings.TrimSpace(wire.MatchType))))
	case ModeConditional:
		cfg.PricingRules = make([]PricingRule, 0, len(wire.PricingRules))
		for i, w := range wire.PricingRules {
			rule, err := decodePricingRule(w)
			if err != nil {
				return Config{}, fmt.Errorf("%w: pricing_rules[%d]: %v", ErrInvalidPricingConfig, i, err)
			}
			cfg.PricingRules = append(cfg.PricingRules, rule)
		}
	}

	return cfg, nil
}

func decodeLinear(obj map[string]any, configMinCharge decimal.NullDecimal) (Rules, error) {
	if price, ok := decimalValue(obj["fixed_price"]); ok {
		return FixedPrice{Price: price}, nil
	}

	base, hasBase := decimalValue(obj["base"])
	perKg, hasPerKg := decimalValue(obj["per_kg"])
	if hasBase && hasPerKg {
		return BaseRate{Base: base, PerKg: perKg}, nil
	}

	first, hasFirst := obj["first_unit"]
	additional, hasAdditional := obj["additional_unit"]
	if (hasFirst && first != nil) || (hasAdditional && additional != nil) {
		firstRef, err := decodePriceRef(first)
		if err != nil {
			return nil, fmt.Errorf("first_unit: %w", err)
		}
		additionalRef, err := decodePriceRef(additional)
		if err != nil {
			return nil, fmt.Errorf("additional_unit: %w", err)
		}
		return UnitRate{FirstUnit: firstRef, AdditionalUnit: additionalRef}, nil
	}

	unitPrice, _ := decimalValue(obj["unit_price"])
	minCharge, ok := decimalValue(obj["min_charge"])
	if !ok && configMinCharge.Valid {
		minCharge = configMinCharge.Decimal
	}
	return PerWeight{UnitPrice: unitPrice, MinCharge: minCharge}, nil
}

func decodeStep(obj map[string]any) Rules {
	firstWeight, _ := decimalValue(obj["first_weight"])
	firstPrice, _ := decimalValue(obj["first_price"])
	additionalWeight, _ := decimalValue(obj["additional_weight"])
	additionalPrice, _ := decimalValue(obj["additional_price"])
	return StepRate{
		FirstWeight:      firstWeight,
		FirstPrice:       firstPrice,
		AdditionalWeight: additionalWeight,
		AdditionalPrice:  additionalPrice,
	}
}

func decodeTier(rules any, matchType MatchType) Rules {
	switch typed := rules.(type) {
	case map[string]any:
		list, ok := typed["tiers"].([]any)
		if !ok {
			return nil
		}
		tiers := make([]WeightTier, 0, len(list))
		for _, item := range list {
			obj := asObject(item)
			maxKg, ok := decimalValue(obj["max_kg"])
			if !ok {
				continue
			}
			price, _ := decimalValue(obj["price"])
			tiers = append(tiers, WeightTier{MaxKg: maxKg, Price: price})
		}
		return TierTable{Tiers: tiers}
	case []any:
		if matchType == "" {
			matchType = MatchPerWeight
		}
		ranges := make([]RangeTier, 0, len(typed))
		for _, item := range typed {
			obj := asObject(item)
			lower, ok := decimalValue(obj["min"])
			if !ok {
				continue
			}
			price, _ := decimalValue(obj["price"])
			tier := RangeTier{Min: lower, Price: price}
			if upper, ok := decimalValue(obj["max"]); ok {
				tier.Max = &upper
			}
			ranges = append(ranges, tier)
		}
		return RangeTable{Ranges: ranges, MatchType: matchType}
	default:
		return nil
	}
}

func decodePricingRule(w wireRule) (PricingRule, error) {
	conditions, err := parseValue(w.Conditions)
	if err != nil {
		return PricingRule{}, err
	}
	pricing, err := parseValue(w.Pricing)
	if err != nil {
		return PricingRule{}, err
	}
	decodedPricing, err := decodePricing(asObject(pricing))
	if err != nil {
		return PricingRule{}, fmt.Errorf("pricing: %w", err)
	}
	minCharge, err := parseValue(w.MinCharge)
	if err != nil {
		return PricingRule{}, err
	}

	return PricingRule{
		Priority:   w.Priority,
		Conditions: decodeConditions(conditions),
		Pricing:    decodedPricing,
		MinCharge:  nullDecimal(minCharge),
		Surcharges: nonNull(w.Surcharges),
		Discounts:  nonNull(w.Discounts),
	}, nil
}

func decodeConditions(raw any) []condition.Entry {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	entries := make([]condition.Entry, 0, len(list))
	for _, item := range list {
		obj, _ := item.(map[string]any)
		entries = append(entries, condition.Entry(obj))
	}
	return entries
}

func decodePricing(obj map[string]any) (Pricing, error) {
	kind, _ := obj["type"].(string)
	p := Pricing{
		Type:  PricingType(strings.ToLower(strings.TrimSpace(kind))),
		Base:  nullDecimal(obj["base"]),
		PerKg: nullDecimal(obj["per_kg"]),
	}
	var err error
	if p.FirstUnit, err = decodePriceRef(obj["first_unit"]); err != nil {
		return Pricing{}, fmt.Errorf("first_unit: %w", err)
	}
	if p.AdditionalUnit, err = decodePriceRef(obj["additional_unit"]); err != nil {
		return Pricing{}, fmt.Errorf("additional_unit: %w", err)
	}
	return p, nil
}

// decodePriceRef accepts a scalar price, {price: x} or {product_id: id}.
// Only an absent or null payload decodes to a nil ref; anything else that
// is not one of those shapes is an error, so a bad reference never bills
// as zero.
func decodePriceRef(raw any) (PriceRef, error) {
	if raw == nil {
		return nil, nil
	}
	if value, ok := decimalValue(raw); ok {
		return Amount{Value: value}, nil
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("price %v is not a number", raw)
	}
	if price, ok := obj["price"]; ok {
		value, ok := decimalValue(price)
		if !ok {
			return nil, fmt.Errorf("price %v is not a number", price)
		}
		return Amount{Value: value}, nil
	}
	if id, ok := obj["product_id"]; ok {
		parsed, err := snowflake.ParseString(strings.TrimSpace(fmt.Sprint(id)))
		if err != nil || parsed == 0 {
			return nil, fmt.Errorf("product_id %v is not a valid id", id)
		}
		return ProductRef{ProductID: parsed}, nil
	}
	return nil, errors.New("price reference needs price or product_id")
}

func parseValue(raw json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func asObject(v any) map[string]any {
	obj, _ := v.(map[string]any)
	return obj
}

func decimalValue(v any) (decimal.Decimal, bool) {
	switch typed := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(typed.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(typed))
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(typed), true
	default:
		return decimal.Zero, false
	}
}

func nullDecimal(v any) decimal.NullDecimal {
	d, ok := decimalValue(v)
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}

// nonNull maps absent, null and empty-list payloads to nil.
func nonNull(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if bytes.Equal(bytes.Join(bytes.Fields(trimmed), nil), []byte("[]")) {
		return nil
	}
	return raw
}
