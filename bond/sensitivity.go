package bond

import "github.com/meenmo/ratelib/curve"

// basisPoint is one basis point in yield units.
const basisPoint = 0.0001

// Price is the present value of cfs at yield y.
func Price(cfs []CashFlow, y float64, m curve.Compounding) float64 {
	var p float64
	for _, cf := range cfs {
		p += cf.Amount * m.DiscountFactor(y, cf.Time)
	}
	return p
}

// PriceDelta is ∂P/∂y.
func PriceDelta(cfs []CashFlow, y float64, m curve.Compounding) float64 {
	var d float64
	for _, cf := range cfs {
		d += cf.Amount * m.DiscountFactorDelta(y, cf.Time)
	}
	return d
}

// PriceGamma is ∂²P/∂y².
func PriceGamma(cfs []CashFlow, y float64, m curve.Compounding) float64 {
	var g float64
	for _, cf := range cfs {
		g += cf.Amount * m.DiscountFactorGamma(y, cf.Time)
	}
	return g
}

// ModifiedDuration is −(1/P)·∂P/∂y, or 0 when the price is zero.
func ModifiedDuration(cfs []CashFlow, y float64, m curve.Compounding) float64 {
	p := Price(cfs, y, m)
	if p == 0 {
		return 0
	}
	return -PriceDelta(cfs, y, m) / p
}

// Convexity is (1/P)·∂²P/∂y², or 0 when the price is zero.
func Convexity(cfs []CashFlow, y float64, m curve.Compounding) float64 {
	p := Price(cfs, y, m)
	if p == 0 {
		return 0
	}
	return PriceGamma(cfs, y, m) / p
}

// DV01 is the price change for a one basis point fall in yield: −∂P/∂y · 0.0001.
func DV01(cfs []CashFlow, y float64, m curve.Compounding) float64 {
	return -PriceDelta(cfs, y, m) * basisPoint
}
