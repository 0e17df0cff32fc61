package condition

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/casbin/govaluate"
	"github.com/shopspring/decimal"
)

// operatorFuncs maps a rule operator to the govaluate function that
// implements it. Every function is false when the field is absent. "in" is
// a govaluate keyword, hence has/lacks.
var operatorFuncs = map[string]string{
	">=":     "gte",
	">":      "gt",
	"<=":     "lte",
	"<":      "lt",
	"==":     "eq",
	"=":      "eq",
	"eq":     "eq",
	"!=":     "ne",
	"ne":     "ne",
	"in":     "has",
	"not_in": "lacks",
}

var expressionFuncs = map[string]govaluate.ExpressionFunction{
	"gte":   compareFunc(func(cmp int) bool { return cmp >= 0 }),
	"gt":    compareFunc(func(cmp int) bool { return cmp > 0 }),
	"lte":   compareFunc(func(cmp int) bool { return cmp <= 0 }),
	"lt":    compareFunc(func(cmp int) bool { return cmp < 0 }),
	"eq":    binaryFunc(equal),
	"ne":    binaryFunc(func(a, b any) bool { return !equal(a, b) }),
	"has":   binaryFunc(func(a, b any) bool { return contains(b, a) }),
	"lacks": binaryFunc(func(a, b any) bool { return !contains(b, a) }),
}

type localEvaluator struct{}

// NewLocalEvaluator returns an in-process Evaluator backed by govaluate.
// Numeric operands are compared as decimals; anything else falls back to
// case-insensitive string equality.
func NewLocalEvaluator() Evaluator {
	return localEvaluator{}
}

func (localEvaluator) Evaluate(_ context.Context, tree Tree, vars Context) (bool, error) {
	logic := Logic(strings.ToUpper(strings.TrimSpace(string(tree.Operator))))
	var joiner string
	switch logic {
	case "", LogicAnd:
		logic, joiner = LogicAnd, " && "
	case LogicOr:
		joiner = " || "
	default:
		return false, fmt.Errorf("%w: %q", ErrUnsupportedLogic, tree.Operator)
	}
	if len(tree.Rules) == 0 {
		return logic == LogicAnd, nil
	}

	clauses := make([]string, 0, len(tree.Rules))
	params := make(map[string]any, 2*len(tree.Rules))
	for i, rule := range tree.Rules {
		fn, ok := operatorFuncs[strings.ToLower(strings.TrimSpace(rule.Operator))]
		if !ok {
			return false, fmt.Errorf("%w: %q", ErrUnsupportedOperator, rule.Operator)
		}
		field, value := fmt.Sprintf("field%d", i), fmt.Sprintf("value%d", i)
		params[field] = operand(vars[rule.Field])
		params[value] = operand(rule.Value)
		clauses = append(clauses, fmt.Sprintf("%s(%s, %s)", fn, field, value))
	}

	expr, err := govaluate.NewEvaluableExpressionWithFunctions(strings.Join(clauses, joiner), expressionFuncs)
	if err != nil {
		return false, fmt.Errorf("compile condition: %w", err)
	}
	result, err := expr.Evaluate(params)
	if err != nil {
		return false, fmt.Errorf("evaluate condition: %w", err)
	}
	ok, _ := result.(bool)
	return ok, nil
}

// listOperand keeps list values opaque to govaluate, which would otherwise
// splice them into the function argument list.
type listOperand struct {
	items []any
}

// missing marks a field absent from the context.
type missing struct{}

func operand(v any) any {
	switch typed := v.(type) {
	case nil:
		return missing{}
	case []any:
		return listOperand{items: typed}
	case []string:
		items := make([]any, len(typed))
		for i, item := range typed {
			items[i] = item
		}
		return listOperand{items: items}
	default:
		return v
	}
}

func binaryFunc(fn func(a, b any) bool) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("expected 2 operands, got %d", len(args))
		}
		if _, absent := args[0].(missing); absent {
			return false, nil
		}
		return fn(args[0], args[1]), nil
	}
}

func compareFunc(accept func(cmp int) bool) govaluate.ExpressionFunction {
	return binaryFunc(func(a, b any) bool {
		left, lok := toDecimal(a)
		right, rok := toDecimal(b)
		if !lok || !rok {
			return false
		}
		return accept(left.Cmp(right))
	})
}

func equal(a, b any) bool {
	left, lok := toDecimal(a)
	right, rok := toDecimal(b)
	if lok && rok {
		return left.Equal(right)
	}
	return strings.EqualFold(fmt.Sprint(a), fmt.Sprint(b))
}

func contains(list any, value any) bool {
	items, ok := list.(listOperand)
	if !ok {
		return false
	}
	for _, item := range items.items {
		if equal(item, value) {
			return true
		}
	}
	return false
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch typed := v.(type) {
	case decimal.Decimal:
		return typed, true
	case *decimal.Decimal:
		if typed == nil {
			return decimal.Zero, false
		}
		return *typed, true
	case int:
		return decimal.NewFromInt(int64(typed)), true
	case int32:
		return decimal.NewFromInt32(typed), true
	case int64:
		return decimal.NewFromInt(typed), true
	case float32:
		return decimal.NewFromFloat32(typed), true
	case float64:
		return decimal.NewFromFloat(typed), true
	case json.Number:
		d, err := decimal.NewFromString(typed.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(typed))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}
