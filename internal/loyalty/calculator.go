// Package loyalty turns order amounts into affiliate points.
package loyalty

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/workhub/orders-api/internal/domain"
)

var (
	ErrMissingStandardRule = errors.New("tier rules must define the standard tier")
	ErrInvalidRule         = errors.New("invalid tier rule")
)

// TierRule awards PointsPerUnit points for every full UnitAmount spent.
type TierRule struct {
	PointsPerUnit int
	UnitAmount    decimal.Decimal
}

type Rules map[domain.Tier]TierRule

// DefaultRules gives premium members twice the standard accrual rate.
func DefaultRules() Rules {
	return Rules{
		domain.TierStandard: {PointsPerUnit: 2, UnitAmount: decimal.NewFromInt(10)},
		domain.TierPremium:  {PointsPerUnit: 4, UnitAmount: decimal.NewFromInt(10)},
	}
}

func (r Rules) Validate() error {
	if _, ok := r[domain.TierStandard]; !ok {
		return ErrMissingStandardRule
	}

	for tier, rule := range r {
		if !tier.Valid() {
			return fmt.Errorf("%w: unknown tier %q", ErrInvalidRule, tier)
		}
		if rule.PointsPerUnit < 0 {
			return fmt.Errorf("%w: %s points per unit is negative", ErrInvalidRule, tier)
		}
		if !rule.UnitAmount.IsPositive() {
			return fmt.Errorf("%w: %s unit amount must be positive", ErrInvalidRule, tier)
		}
	}

	return nil
}

type Calculator struct {
	rules atomic.Pointer[Rules]
}

func NewCalculator(rules Rules) (*Calculator, error) {
	c := &Calculator{}
	if err := c.SetRules(rules); err != nil {
		return nil, err
	}

	return c, nil
}

// SetRules replaces the rules table. The table is copied, so later changes to
// rules do not leak into the calculator.
func (c *Calculator) SetRules(rules Rules) error {
	if err := rules.Validate(); err != nil {
		return err
	}

	cp := make(Rules, len(rules))
	for tier, rule := range rules {
		cp[tier] = rule
	}
	c.rules.Store(&cp)

	return nil
}

func (c *Calculator) Rules() Rules {
	return *c.rules.Load()
}

// Calculate returns the points earned for amount at tier. Negative amounts and
// amounts below one unit earn nothing, unknown tiers are treated as standard
// and partial units are dropped.
func (c *Calculator) Calculate(amount decimal.Decimal, tier domain.Tier) int {
	if amount.IsNegative() {
		return 0
	}

	rules := *c.rules.Load()
	rule, ok := rules[tier]
	if !ok {
		rule = rules[domain.TierStandard]
	}

	if amount.LessThan(rule.UnitAmount) {
		return 0
	}

	units := amount.Div(rule.UnitAmount).Floor().IntPart()
	return int(units) * rule.PointsPerUnit
}
