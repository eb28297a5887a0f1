package bond

import (
	"errors"
	"fmt"
	"math"

	"github.com/meenmo/ratelib/bond/config"
	"github.com/meenmo/ratelib/curve"
	"github.com/meenmo/ratelib/utils"
)

// ErrRootNotBracketed is returned when price(y) − target does not change sign on
// the solver's bracket.
var ErrRootNotBracketed = errors.New("yield solver: root not bracketed")

// DefaultInitialGuess is the conventional starting yield passed by instruments.
const DefaultInitialGuess = 0.05

// YieldResult is the output of SolveYieldDetailed.
type YieldResult struct {
	Yield float64
	// BracketUpper is the upper bound actually used by the bisection phase.
	BracketUpper float64
	// NewtonIterations is the number of Newton-Raphson steps taken.
	NewtonIterations int
	// Converged is false when Newton stopped on its iteration budget or a flat derivative.
	Converged bool
	// Residual is price(Yield) − target.
	Residual float64
}

// SolveYield finds y such that price(y, compounding) == target.
//
// The solver runs a fixed number of bisection steps on a bracket of the root and
// refines the midpoint with Newton-Raphson using a central finite-difference
// derivative. Apart from ErrRootNotBracketed it always returns a best-effort yield.
func SolveYield(price PriceFunc, target float64, compounding curve.Compounding, initialGuess float64, cfg config.Config) (float64, error) {
	res, err := SolveYieldDetailed(price, target, compounding, initialGuess, cfg)
	if err != nil {
		return 0, err
	}
	return res.Yield, nil
}

// SolveYieldDetailed is SolveYield with iteration diagnostics.
//
// initialGuess is validated but not evaluated: Newton always starts from the
// bisection midpoint.
func SolveYieldDetailed(price PriceFunc, target float64, compounding curve.Compounding, initialGuess float64, cfg config.Config) (YieldResult, error) {
	if err := validateSolve(price, target, compounding, initialGuess, cfg); err != nil {
		return YieldResult{}, err
	}
	log := cfg.Log()

	f := func(y float64) float64 {
		return price(y, compounding) - target
	}

	y, upper, err := bisect(f, cfg)
	if err != nil {
		return YieldResult{}, err
	}

	log.Debug().
		Float64("target", target).
		Float64("bracket_upper", upper).
		Float64("bisection_yield", y).
		Str("compounding", compounding.String()).
		Msg("Bisection phase complete")

	res := newton(f, price, compounding, y, cfg)
	res.BracketUpper = upper

	if !res.Converged {
		log.Debug().
			Float64("yield", res.Yield).
			Float64("residual", res.Residual).
			Int("iterations", res.NewtonIterations).
			Msg("Newton phase stopped before convergence")
	}
	return res, nil
}

// CashFlowPricer adapts a cash-flow sequence to the solver's PriceFunc.
func CashFlowPricer(cfs []CashFlow) PriceFunc {
	return func(y float64, m curve.Compounding) float64 {
		return Price(cfs, y, m)
	}
}

func validateSolve(price PriceFunc, target float64, compounding curve.Compounding, initialGuess float64, cfg config.Config) error {
	if price == nil {
		return utils.Invalidf("SolveYield: price function is required")
	}
	if err := utils.CheckFinite("SolveYield: target price", target); err != nil {
		return err
	}
	if err := utils.CheckFinite("SolveYield: initial guess", initialGuess); err != nil {
		return err
	}
	if !compounding.Valid() {
		return utils.Invalidf("SolveYield: compounding convention is required")
	}
	if cfg.BisectionIterations < 0 || cfg.MaxNewtonIterations < 0 {
		return utils.Invalidf("SolveYield: iteration budgets must not be negative")
	}
	if !(cfg.BracketLower < cfg.BracketUpper && cfg.BracketUpper <= cfg.BracketExpandedUpper) {
		return utils.Invalidf("SolveYield: bracket must satisfy lower < upper <= expanded upper")
	}
	if !(cfg.YieldFloor < cfg.YieldCeiling) {
		return utils.Invalidf("SolveYield: yield floor must be below ceiling")
	}
	return nil
}

// ---------------------------------------------------------------------------
// phases (unexported)
// ---------------------------------------------------------------------------

// bisect brackets the root and halves the bracket exactly cfg.BisectionIterations
// times, returning the final midpoint and the upper bound it started from.
func bisect(f func(float64) float64, cfg config.Config) (float64, float64, error) {
	a, b := cfg.BracketLower, cfg.BracketUpper
	fa, fb := f(a), f(b)

	if !bracketed(fa, fb) {
		b = cfg.BracketExpandedUpper
		fb = f(b)
		if !bracketed(fa, fb) {
			return 0, 0, fmt.Errorf("SolveYield: no sign change on [%g, %g]: %w", a, b, ErrRootNotBracketed)
		}
	}
	upper := b

	for i := 0; i < cfg.BisectionIterations; i++ {
		c := (a + b) / 2.0
		fc := f(c)
		if opposite(fa, fc) {
			b = c
		} else {
			a, fa = c, fc
		}
	}

	return (a + b) / 2.0, upper, nil
}

// newton refines y0 with Newton-Raphson, clamping each update to [YieldFloor, YieldCeiling].
//
//	h     = max(MinDerivativeStep, RelativeDerivativeStep·|y|)
//	f'(y) ≈ [P(y+h) − P(y−h)] / 2h
func newton(f func(float64) float64, price PriceFunc, m curve.Compounding, y0 float64, cfg config.Config) YieldResult {
	y := y0
	res := YieldResult{Yield: y}

	for iter := 0; iter < cfg.MaxNewtonIterations; iter++ {
		fy := f(y)
		res.Yield, res.Residual, res.NewtonIterations = y, fy, iter

		if math.Abs(fy) < cfg.ConvergenceTolerance {
			res.Converged = true
			return res
		}

		h := max(cfg.MinDerivativeStep, cfg.RelativeDerivativeStep*math.Abs(y))
		dPdy := (price(y+h, m) - price(y-h, m)) / (2.0 * h)
		if math.Abs(dPdy) < cfg.DerivativeThreshold {
			return res
		}

		y = clamp(y-fy/dPdy, cfg.YieldFloor, cfg.YieldCeiling)
		res.NewtonIterations = iter + 1
	}

	res.Yield = y
	res.Residual = f(y)
	res.Converged = math.Abs(res.Residual) < cfg.ConvergenceTolerance
	return res
}

// bracketed reports a sign change or a root at an end; NaN never brackets.
func bracketed(fa, fb float64) bool {
	return fa == 0 || fb == 0 || opposite(fa, fb)
}

// opposite reports strictly opposite signs.
func opposite(a, b float64) bool {
	return (a < 0 && b > 0) || (a > 0 && b < 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
