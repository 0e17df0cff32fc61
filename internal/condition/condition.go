// Package condition holds the canonical condition tree consumed by rule
// evaluators and the normalization of template-style conditions into it.
package condition

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Logic joins the rules of a Tree.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Context keys populated for freight pricing.
const (
	FieldFreightWeight      = "freight.weight"
	FieldFreightOrderAmount = "freight.order_amount"
	FieldFreightDestination = "freight.destination"
)

var (
	ErrUnsupportedOperator = errors.New("unsupported_operator")
	ErrUnsupportedLogic    = errors.New("unsupported_logic")
)

// Rule is a single field comparison.
type Rule struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// Tree is the canonical evaluator input.
type Tree struct {
	Operator Logic  `json:"operator"`
	Rules    []Rule `json:"rules"`
}

// Entry is one raw condition as stored on a pricing rule. It is either a
// template entry ({type, value}) or an already canonical one
// ({field, operator, value}).
type Entry map[string]any

// Context is the flat key/value map a Tree is evaluated against.
type Context map[string]any

// FreightContext builds the evaluation context for shipping rules.
func FreightContext(weight, orderAmount decimal.Decimal) Context {
	return Context{
		FieldFreightWeight:      weight,
		FieldFreightOrderAmount: orderAmount,
	}
}

// With returns a copy of c with key set to value.
func (c Context) With(key string, value any) Context {
	out := make(Context, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	out[key] = value
	return out
}

//go:generate mockgen -destination=mock/evaluator_mock.go -package=mock github.com/smallbiznis/orderpricing/internal/condition Evaluator

// Evaluator decides whether a condition tree holds for a context. The
// comparison operator set and AND/OR semantics belong to the implementation.
type Evaluator interface {
	Evaluate(ctx context.Context, tree Tree, vars Context) (bool, error)
}
