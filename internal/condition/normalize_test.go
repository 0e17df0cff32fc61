package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_TemplateEntries(t *testing.T) {
	tree := Normalize([]Entry{
		{"type": "weight_gte", "value": 5},
		{"type": "order_amount_gte", "value": "100.00"},
	})

	require.NotNil(t, tree)
	assert.Equal(t, LogicAnd, tree.Operator)
	assert.Equal(t, []Rule{
		{Field: FieldFreightWeight, Operator: ">=", Value: 5},
		{Field: FieldFreightOrderAmount, Operator: ">=", Value: "100.00"},
	}, tree.Rules)
}

func TestNormalize_CanonicalEntriesPassThrough(t *testing.T) {
	tree := Normalize([]Entry{
		{"field": "freight.destination", "operator": "in", "value": []any{"ID", "SG"}},
	})

	require.NotNil(t, tree)
	require.Len(t, tree.Rules, 1)
	assert.Equal(t, "freight.destination", tree.Rules[0].Field)
	assert.Equal(t, "in", tree.Rules[0].Operator)
	assert.Equal(t, []any{"ID", "SG"}, tree.Rules[0].Value)
}

func TestNormalize_DropsMalformedEntries(t *testing.T) {
	tree := Normalize([]Entry{
		{"type": "unknown_gte", "value": 1},
		{"type": "weight_gte"},
		{"field": "freight.weight"},
		{"type": 42, "value": 1},
		nil,
		{"type": "weight_gte", "value": 2},
	})

	require.NotNil(t, tree)
	assert.Equal(t, []Rule{{Field: FieldFreightWeight, Operator: ">=", Value: 2}}, tree.Rules)
}

func TestNormalize_EmptyIsCatchAll(t *testing.T) {
	assert.Nil(t, Normalize(nil))
	assert.Nil(t, Normalize([]Entry{}))
	assert.Nil(t, Normalize([]Entry{{"type": "bogus", "value": 1}, {}}))
}
