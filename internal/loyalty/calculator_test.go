package loyalty

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workhub/orders-api/internal/domain"
)

func newDefaultCalculator(t *testing.T) *Calculator {
	t.Helper()

	c, err := NewCalculator(DefaultRules())
	require.NoError(t, err)

	return c
}

func TestCalculator_Calculate_KnownValues(t *testing.T) {
	c := newDefaultCalculator(t)

	tests := []struct {
		name   string
		amount string
		tier   domain.Tier
		want   int
	}{
		{"partial unit dropped", "25", domain.TierStandard, 4},
		{"below one unit", "9.99", domain.TierStandard, 0},
		{"premium doubles rate", "40", domain.TierPremium, 16},
		{"exactly one unit", "10", domain.TierStandard, 2},
		{"zero amount", "0", domain.TierPremium, 0},
		{"negative amount", "-50", domain.TierStandard, 0},
		{"fractional amount above unit", "19.99", domain.TierPremium, 4},
		{"unknown tier falls back to standard", "100", domain.Tier("gold"), 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Calculate(decimal.RequireFromString(tt.amount), tt.tier)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculator_Calculate_WholeUnits(t *testing.T) {
	c := newDefaultCalculator(t)

	for tier, rule := range c.Rules() {
		for k := int64(1); k <= 50; k++ {
			amount := rule.UnitAmount.Mul(decimal.NewFromInt(k))
			assert.Equal(t, int(k)*rule.PointsPerUnit, c.Calculate(amount, tier), "tier %s, k=%d", tier, k)
		}
	}
}

func TestCalculator_Calculate_BelowUnitIsZero(t *testing.T) {
	c := newDefaultCalculator(t)

	for tier, rule := range c.Rules() {
		step := rule.UnitAmount.Div(decimal.NewFromInt(100))
		for amount := decimal.Zero; amount.LessThan(rule.UnitAmount); amount = amount.Add(step) {
			assert.Zero(t, c.Calculate(amount, tier), "tier %s, amount %s", tier, amount)
		}
	}
}

func TestNewCalculator_RejectsInvalidRules(t *testing.T) {
	tests := []struct {
		name  string
		rules Rules
		want  error
	}{
		{
			name:  "missing standard",
			rules: Rules{domain.TierPremium: {PointsPerUnit: 4, UnitAmount: decimal.NewFromInt(10)}},
			want:  ErrMissingStandardRule,
		},
		{
			name:  "zero unit amount",
			rules: Rules{domain.TierStandard: {PointsPerUnit: 2, UnitAmount: decimal.Zero}},
			want:  ErrInvalidRule,
		},
		{
			name:  "negative points",
			rules: Rules{domain.TierStandard: {PointsPerUnit: -1, UnitAmount: decimal.NewFromInt(10)}},
			want:  ErrInvalidRule,
		},
		{
			name: "unknown tier",
			rules: Rules{
				domain.TierStandard: {PointsPerUnit: 2, UnitAmount: decimal.NewFromInt(10)},
				domain.Tier("gold"): {PointsPerUnit: 8, UnitAmount: decimal.NewFromInt(10)},
			},
			want: ErrInvalidRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCalculator(tt.rules)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCalculator_SetRules_SwapsTable(t *testing.T) {
	c := newDefaultCalculator(t)
	rules := DefaultRules()
	rules[domain.TierStandard] = TierRule{PointsPerUnit: 1, UnitAmount: decimal.NewFromInt(5)}

	require.NoError(t, c.SetRules(rules))
	assert.Equal(t, 5, c.Calculate(decimal.NewFromInt(25), domain.TierStandard))

	// the calculator keeps its own copy
	rules[domain.TierStandard] = TierRule{PointsPerUnit: 100, UnitAmount: decimal.NewFromInt(1)}
	assert.Equal(t, 5, c.Calculate(decimal.NewFromInt(25), domain.TierStandard))

	err := c.SetRules(Rules{})
	assert.ErrorIs(t, err, ErrMissingStandardRule)
	assert.Equal(t, 5, c.Calculate(decimal.NewFromInt(25), domain.TierStandard), "invalid rules must not replace the table")
}
