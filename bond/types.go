package bond

import "github.com/meenmo/ratelib/curve"

// CashFlow is a single scheduled payment Time years from valuation.
//
// Amounts are in currency units, not price-per-100.
type CashFlow struct {
	Time   float64
	Amount float64
}

// PriceFunc prices an instrument's cash flows as a function of a flat yield under
// the given compounding convention. The yield solver depends only on this capability.
type PriceFunc func(yield float64, compounding curve.Compounding) float64
