package condition

import "strings"

type template struct {
	field    string
	operator string
}

// templates maps template condition types onto canonical comparisons.
var templates = map[string]template{
	"weight_gte":       {field: FieldFreightWeight, operator: ">="},
	"order_amount_gte": {field: FieldFreightOrderAmount, operator: ">="},
}

// Normalize converts stored condition entries into a canonical AND tree.
// Unrecognized or malformed entries are dropped. It returns nil when no
// entry survives, which callers treat as a catch-all.
func Normalize(entries []Entry) *Tree {
	if len(entries) == 0 {
		return nil
	}

	rules := make([]Rule, 0, len(entries))
	for _, entry := range entries {
		rule, ok := normalizeEntry(entry)
		if !ok {
			continue
		}
		rules = append(rules, rule)
	}

	if len(rules) == 0 {
		return nil
	}
	return &Tree{Operator: LogicAnd, Rules: rules}
}

func normalizeEntry(entry Entry) (Rule, bool) {
	if entry == nil {
		return Rule{}, false
	}

	field, hasField := stringValue(entry, "field")
	operator, hasOperator := stringValue(entry, "operator")
	if hasField && hasOperator {
		return Rule{Field: field, Operator: operator, Value: entry["value"]}, true
	}

	kind, ok := stringValue(entry, "type")
	if !ok {
		return Rule{}, false
	}
	tmpl, ok := templates[strings.ToLower(kind)]
	if !ok {
		return Rule{}, false
	}
	value, ok := entry["value"]
	if !ok || value == nil {
		return Rule{}, false
	}

	return Rule{Field: tmpl.field, Operator: tmpl.operator, Value: value}, true
}

func stringValue(entry Entry, key string) (string, bool) {
	raw, ok := entry[key]
	if !ok {
		return "", false
	}
	value, ok := raw.(string)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
