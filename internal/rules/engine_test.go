package rules

import (
	"testing"

	"finbook/csv-import/internal/logging"
	"finbook/csv-import/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func literalRule(id int64, pattern, category string, priority int) models.VendorMappingRule {
	return models.VendorMappingRule{ID: id, Pattern: pattern, Category: category, Priority: priority, Active: true}
}

func TestEngineMatch(t *testing.T) {
	engine := NewEngine([]models.VendorMappingRule{
		literalRule(1, "STARBUCKS", "Dining", 5),
		literalRule(2, "STAR", "Shopping", 1),
		literalRule(3, "WHOLE FOODS", "Groceries", 5),
	}, nil)

	tests := []struct {
		name        string
		description string
		category    string
		matched     bool
	}{
		{
			name:        "higher priority wins when both match",
			description: "STARBUCKS #123",
			category:    "Dining",
			matched:     true,
		},
		{
			name:        "case insensitive literal",
			description: "starbucks store 99",
			category:    "Dining",
			matched:     true,
		},
		{
			name:        "substring match anywhere in description",
			description: "POS DEBIT WHOLE FOODS MKT",
			category:    "Groceries",
			matched:     true,
		},
		{
			name:        "lower priority still matches alone",
			description: "STARDUST DINER",
			category:    "Shopping",
			matched:     true,
		},
		{
			name:        "no rule matches",
			description: "UNMAPPED VENDOR",
			matched:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := engine.Match(tt.description)
			assert.Equal(t, tt.matched, ok)
			if tt.matched {
				assert.Equal(t, tt.category, rule.Category)
			}
		})
	}
}

func TestEnginePriorityTieBreaksByCreationOrder(t *testing.T) {
	// Same priority, both match: the rule created first wins, whatever
	// order the slice arrives in.
	engine := NewEngine([]models.VendorMappingRule{
		literalRule(9, "COFFEE", "Misc", 3),
		literalRule(2, "COFFEE SHOP", "Dining", 3),
	}, nil)

	rule, ok := engine.Match("COFFEE SHOP ON MAIN")
	require.True(t, ok)
	assert.Equal(t, "Dining", rule.Category)
	assert.Equal(t, int64(2), rule.ID)
}

func TestEngineRegexRules(t *testing.T) {
	engine := NewEngine([]models.VendorMappingRule{
		{ID: 1, Pattern: `UBER\s*(EATS|TRIP)`, Category: "Transportation", IsRegex: true, Priority: 5, Active: true},
		literalRule(2, "UBER", "Misc", 1),
	}, nil)

	rule, ok := engine.Match("uber trip 4532")
	require.True(t, ok)
	assert.Equal(t, "Transportation", rule.Category, "regex matches case-insensitively")

	rule, ok = engine.Match("UBER ONE MEMBERSHIP")
	require.True(t, ok)
	assert.Equal(t, "Misc", rule.Category, "falls through to the literal rule")
}

func TestEngineSkipsInvalidRegex(t *testing.T) {
	mock := logging.NewMockLogger()
	engine := NewEngine([]models.VendorMappingRule{
		{ID: 1, Pattern: `([unclosed`, Category: "Misc", IsRegex: true, Priority: 9, Active: true},
		literalRule(2, "SAFEWAY", "Groceries", 1),
	}, mock)

	assert.Equal(t, 1, engine.Len())
	assert.True(t, mock.HasEntryContaining("WARN", "invalid regex"))

	rule, ok := engine.Match("SAFEWAY #0441")
	require.True(t, ok)
	assert.Equal(t, "Groceries", rule.Category)
}

func TestEngineDeterministicAcrossRuns(t *testing.T) {
	ruleSet := []models.VendorMappingRule{
		literalRule(1, "SHELL", "Transportation", 4),
		literalRule(2, "SHEL", "Misc", 4),
		{ID: 3, Pattern: `SHELL OIL \d+`, Category: "Transportation", IsRegex: true, Priority: 8, Active: true},
	}

	first, ok := NewEngine(ruleSet, nil).Match("SHELL OIL 5521")
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, ok := NewEngine(ruleSet, nil).Match("SHELL OIL 5521")
		require.True(t, ok)
		assert.Equal(t, first.ID, again.ID)
	}
}

func TestEngineEmptyRuleSet(t *testing.T) {
	engine := NewEngine(nil, nil)
	assert.Equal(t, 0, engine.Len())
	_, ok := engine.Match("ANYTHING")
	assert.False(t, ok)
}
