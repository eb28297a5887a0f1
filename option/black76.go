package option

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Black76Price returns the discounted option value.
func Black76Price(f, k, t, sigma, df float64, kind Kind) float64 {
	if degenerate(t, sigma) {
		return df * kind.Payoff(f, k)
	}

	d1, d2 := d1d2(f, k, t, sigma)
	if kind == Put {
		return df * (k*normCDF(-d2) - f*normCDF(-d1))
	}
	return df * (f*normCDF(d1) - k*normCDF(d2))
}

// Black76Vega is ∂V/∂σ = D·F·φ(d1)·√T; zero in the degenerate case.
func Black76Vega(f, k, t, sigma, df float64) float64 {
	if degenerate(t, sigma) {
		return 0.0
	}
	d1, _ := d1d2(f, k, t, sigma)
	return df * f * normPDF(d1) * math.Sqrt(t)
}

// Black76Delta is the discounted forward delta: D·N(d1) for calls, −D·N(−d1) for puts.
// In the degenerate case it is the discounted moneyness indicator.
func Black76Delta(f, k, t, sigma, df float64, kind Kind) float64 {
	if degenerate(t, sigma) {
		switch {
		case kind == Call && f > k:
			return df
		case kind == Put && f < k:
			return -df
		default:
			return 0.0
		}
	}

	d1, _ := d1d2(f, k, t, sigma)
	if kind == Put {
		return -df * normCDF(-d1)
	}
	return df * normCDF(d1)
}

func degenerate(t, sigma float64) bool {
	return t <= 0 || sigma <= 0
}

func d1d2(f, k, t, sigma float64) (float64, float64) {
	volSqrtT := sigma * math.Sqrt(t)
	d1 := (math.Log(f/k) + 0.5*sigma*sigma*t) / volSqrtT
	return d1, d1 - volSqrtT
}

func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

func normPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}
