package curve

import (
	"fmt"
	"sort"
	"time"

	"github.com/meenmo/ratelib/utils"
)

// ZeroQuote is a market discount factor observed at Time years.
type ZeroQuote struct {
	Time float64
	DF   float64
}

// DiscountCurve is an immutable zero curve. It is either flat (a single yield under
// a compounding convention) or bootstrapped from zero quotes sorted by time.
//
// All methods are pure and safe for concurrent use.
type DiscountCurve struct {
	yield       float64
	compounding Compounding
	dayCount    utils.DayCount
	quotes      []ZeroQuote // non-empty only for bootstrapped curves
}

// NewFlatCurve builds a flat curve. Negative yields are allowed as long as a periodic
// convention keeps 1 + y/m positive.
func NewFlatCurve(yield float64, compounding Compounding, dayCount utils.DayCount) (*DiscountCurve, error) {
	if err := utils.CheckFinite("NewFlatCurve: yield", yield); err != nil {
		return nil, err
	}
	if !compounding.Valid() {
		return nil, utils.Invalidf("NewFlatCurve: compounding convention is required")
	}
	if m, ok := compounding.PeriodsPerYear(); ok && 1.0+yield/float64(m) <= 0 {
		return nil, utils.Invalidf("NewFlatCurve: yield %v is at or below -%d under %s compounding", yield, m, compounding)
	}
	if dayCount == "" {
		dayCount = utils.Act365F
	}
	return &DiscountCurve{
		yield:       yield,
		compounding: compounding,
		dayCount:    dayCount,
	}, nil
}

// NewBootstrappedCurve builds a curve from zero quotes. Each quote must have a positive,
// finite time and discount factor, and no two quotes may share a time. The input need
// not be sorted and is not retained.
func NewBootstrappedCurve(quotes []ZeroQuote) (*DiscountCurve, error) {
	if len(quotes) == 0 {
		return nil, utils.Invalidf("NewBootstrappedCurve: quotes are required")
	}

	boot := make([]ZeroQuote, len(quotes))
	copy(boot, quotes)

	for i, q := range boot {
		if !utils.IsFinite(q.Time) || q.Time <= 0 {
			return nil, utils.Invalidf("NewBootstrappedCurve: quote %d time must be positive and finite, got %v", i, q.Time)
		}
		if !utils.IsFinite(q.DF) || q.DF <= 0 {
			return nil, utils.Invalidf("NewBootstrappedCurve: quote %d discount factor must be positive and finite, got %v", i, q.DF)
		}
	}

	sort.SliceStable(boot, func(i, j int) bool {
		return boot[i].Time < boot[j].Time
	})
	for i := 1; i < len(boot); i++ {
		if boot[i].Time == boot[i-1].Time {
			return nil, utils.Invalidf("NewBootstrappedCurve: duplicate quote time %v", boot[i].Time)
		}
	}

	return &DiscountCurve{
		compounding: Continuous,
		dayCount:    utils.Act365F,
		quotes:      boot,
	}, nil
}

// IsFlat reports whether the curve uses the analytic flat-yield formula.
func (c *DiscountCurve) IsFlat() bool {
	return len(c.quotes) == 0
}

// Yield returns the flat yield; it is zero for bootstrapped curves.
func (c *DiscountCurve) Yield() float64 {
	return c.yield
}

// Compounding returns the curve's convention (Continuous for bootstrapped curves).
func (c *DiscountCurve) Compounding() Compounding {
	return c.compounding
}

// DayCount returns the convention used by DiscountFactorOn.
func (c *DiscountCurve) DayCount() utils.DayCount {
	return c.dayCount
}

// Quotes returns a copy of the sorted pillars of a bootstrapped curve.
func (c *DiscountCurve) Quotes() []ZeroQuote {
	out := make([]ZeroQuote, len(c.quotes))
	copy(out, c.quotes)
	return out
}

// DiscountFactor returns P(0,t). Times at or before zero discount to 1.
//
// Bootstrapped curves extrapolate flat beyond the first and last pillars and
// interpolate log-linearly in between.
func (c *DiscountCurve) DiscountFactor(t float64) (float64, error) {
	if err := utils.CheckFinite("DiscountFactor: time", t); err != nil {
		return 0, err
	}
	if t <= 0 {
		return 1.0, nil
	}
	if c.IsFlat() {
		return c.compounding.DiscountFactor(c.yield, t), nil
	}

	idx := findBracket(c.quotes, t)
	switch {
	case idx == 0:
		return c.quotes[0].DF, nil
	case idx >= len(c.quotes):
		return c.quotes[len(c.quotes)-1].DF, nil
	case c.quotes[idx].Time == t:
		return c.quotes[idx].DF, nil
	}

	q0, q1 := c.quotes[idx-1], c.quotes[idx]
	if q0.DF <= 0 || q1.DF <= 0 {
		return linear(q0, q1, t), nil
	}
	return logLinear(q0, q1, t), nil
}

// ForwardPrice is the forward price of a unit zero-coupon bond maturing at t: 1/P(0,t).
func (c *DiscountCurve) ForwardPrice(t float64) (float64, error) {
	df, err := c.DiscountFactor(t)
	if err != nil {
		return 0, fmt.Errorf("ForwardPrice: %w", err)
	}
	if df <= 0 {
		return 0, nil
	}
	return 1.0 / df, nil
}

// DiscountFactorOn discounts a dated payment, measuring time with the curve's day count.
func (c *DiscountCurve) DiscountFactorOn(settlement, date time.Time) (float64, error) {
	if !date.After(settlement) {
		return 1.0, nil
	}
	return c.DiscountFactor(utils.YearFraction(settlement, date, c.dayCount))
}

// ZeroRate returns the yield implied by P(0,t) under the given convention.
func (c *DiscountCurve) ZeroRate(t float64, compounding Compounding) (float64, error) {
	df, err := c.DiscountFactor(t)
	if err != nil {
		return 0, fmt.Errorf("ZeroRate: %w", err)
	}
	return compounding.ImpliedYield(df, t)
}
