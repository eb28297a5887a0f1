package bond_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/ratelib/bond"
	"github.com/meenmo/ratelib/bond/config"
	"github.com/meenmo/ratelib/curve"
	"github.com/meenmo/ratelib/utils"
)

// curvePrice prices cfs on a flat curve, independently of bond.Price.
func curvePrice(t *testing.T, cfs []bond.CashFlow, y float64, m curve.Compounding) float64 {
	t.Helper()

	crv, err := curve.NewFlatCurve(y, m, utils.Act365F)
	require.NoError(t, err)

	var p float64
	for _, cf := range cfs {
		df, err := crv.DiscountFactor(cf.Time)
		require.NoError(t, err)
		p += cf.Amount * df
	}
	return p
}

func TestSolveYield_RoundTrip(t *testing.T) {
	t.Parallel()

	cfs, err := bond.BulletSchedule(100, 0.05, 2, 10)
	require.NoError(t, err)

	for _, m := range []curve.Compounding{curve.Annual, curve.Semiannual, curve.Quarterly, curve.Monthly, curve.Continuous} {
		for _, y := range []float64{0.002, 0.0437, 0.12, 0.6, 1.5} {
			target := curvePrice(t, cfs, y, m)

			got, err := bond.SolveYield(bond.CashFlowPricer(cfs), target, m, bond.DefaultInitialGuess, config.DefaultConfig)
			require.NoError(t, err)
			assert.InDelta(t, y, got, 1e-6, "%s y=%v", m, y)
		}
	}
}

func TestSolveYield_ReportsPhases(t *testing.T) {
	t.Parallel()

	cfs, err := bond.BulletSchedule(100, 0.03, 1, 5)
	require.NoError(t, err)

	target := bond.Price(cfs, 0.041, curve.Annual)
	res, err := bond.SolveYieldDetailed(bond.CashFlowPricer(cfs), target, curve.Annual, 0.07, config.DefaultConfig)
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, 1.0, res.BracketUpper)
	assert.Greater(t, res.NewtonIterations, 0)
	assert.LessOrEqual(t, res.NewtonIterations, config.DefaultConfig.MaxNewtonIterations)
	assert.Less(t, math.Abs(res.Residual), 1e-12)
	assert.InDelta(t, 0.041, res.Yield, 1e-9)
}

func TestSolveYield_ExpandsBracketForHighYields(t *testing.T) {
	t.Parallel()

	cfs, err := bond.BulletSchedule(100, 0.02, 1, 3)
	require.NoError(t, err)

	target := bond.Price(cfs, 1.4, curve.Annual)
	res, err := bond.SolveYieldDetailed(bond.CashFlowPricer(cfs), target, curve.Annual, bond.DefaultInitialGuess, config.DefaultConfig)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.BracketUpper)
	assert.InDelta(t, 1.4, res.Yield, 1e-6)
}

func TestSolveYield_InitialGuessDoesNotChangeResult(t *testing.T) {
	t.Parallel()

	cfs, err := bond.BulletSchedule(100, 0.05, 2, 4)
	require.NoError(t, err)
	target := bond.Price(cfs, 0.0525, curve.Semiannual)

	base, err := bond.SolveYieldDetailed(bond.CashFlowPricer(cfs), target, curve.Semiannual, bond.DefaultInitialGuess, config.DefaultConfig)
	require.NoError(t, err)

	for _, guess := range []float64{0.0525, -3, 50} {
		var seen []float64
		price := func(y float64, m curve.Compounding) float64 {
			seen = append(seen, y)
			return bond.Price(cfs, y, m)
		}

		res, err := bond.SolveYieldDetailed(price, target, curve.Semiannual, guess, config.DefaultConfig)
		require.NoError(t, err)
		assert.Equal(t, base, res, "guess=%v", guess)
		assert.Greater(t, res.NewtonIterations, 0)
		if guess < 0 || guess > 2 {
			assert.NotContains(t, seen, guess)
		}
	}
}

func TestSolveYield_RootNotBracketed(t *testing.T) {
	t.Parallel()

	cfs, err := bond.BulletSchedule(100, 0.05, 2, 10)
	require.NoError(t, err)

	// Above the undiscounted sum of cash flows: no yield in [0, 2] reaches it.
	_, err = bond.SolveYield(bond.CashFlowPricer(cfs), 1000, curve.Semiannual, bond.DefaultInitialGuess, config.DefaultConfig)
	assert.ErrorIs(t, err, bond.ErrRootNotBracketed)

	nan := func(float64, curve.Compounding) float64 { return math.NaN() }
	_, err = bond.SolveYield(nan, 100, curve.Annual, bond.DefaultInitialGuess, config.DefaultConfig)
	assert.ErrorIs(t, err, bond.ErrRootNotBracketed)
}

func TestSolveYield_NegativeYieldNeedsWiderRange(t *testing.T) {
	t.Parallel()

	cfs, err := bond.BulletSchedule(100, 0.001, 1, 5)
	require.NoError(t, err)
	target := bond.Price(cfs, -0.01, curve.Annual)

	_, err = bond.SolveYield(bond.CashFlowPricer(cfs), target, curve.Annual, bond.DefaultInitialGuess, config.DefaultConfig)
	require.ErrorIs(t, err, bond.ErrRootNotBracketed)

	cfg := config.DefaultConfig
	cfg.BracketLower = -0.05
	cfg.YieldFloor = -0.05
	got, err := bond.SolveYield(bond.CashFlowPricer(cfs), target, curve.Annual, bond.DefaultInitialGuess, cfg)
	require.NoError(t, err)
	assert.InDelta(t, -0.01, got, 1e-6)
}

func TestSolveYield_FlatDerivativeReturnsBisectionEstimate(t *testing.T) {
	t.Parallel()

	step := func(y float64, _ curve.Compounding) float64 {
		if y < 0.3 {
			return 100
		}
		return 50
	}

	res, err := bond.SolveYieldDetailed(step, 75, curve.Annual, bond.DefaultInitialGuess, config.DefaultConfig)
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 0, res.NewtonIterations)
	assert.InDelta(t, 0.3, res.Yield, 1e-3)
}

func TestSolveYield_FixedBisectionBudget(t *testing.T) {
	t.Parallel()

	calls := 0
	linear := func(y float64, _ curve.Compounding) float64 {
		calls++
		return 100 - 100*y
	}

	cfg := config.DefaultConfig
	cfg.MaxNewtonIterations = 0
	res, err := bond.SolveYieldDetailed(linear, 100-100*0.3, curve.Annual, bond.DefaultInitialGuess, cfg)
	require.NoError(t, err)

	// bracket ends, ten bisection steps, the final residual
	assert.Equal(t, 13, calls)
	assert.InDelta(t, 0.3, res.Yield, 1.0/2048)
}

func TestSolveYield_TinyResidualsKeepTheirSigns(t *testing.T) {
	t.Parallel()

	// Residual products of order 1e-400 underflow to zero.
	sameSign := func(float64, curve.Compounding) float64 { return 1e-200 }
	_, err := bond.SolveYield(sameSign, 0, curve.Annual, bond.DefaultInitialGuess, config.DefaultConfig)
	assert.ErrorIs(t, err, bond.ErrRootNotBracketed)

	crossing := func(y float64, _ curve.Compounding) float64 { return 1e-200 * (0.3 - y) }
	res, err := bond.SolveYieldDetailed(crossing, 0, curve.Annual, bond.DefaultInitialGuess, config.DefaultConfig)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, res.Yield, 1.0/2048)

	huge := func(y float64, _ curve.Compounding) float64 { return 1e200 * (0.3 - y) }
	res, err = bond.SolveYieldDetailed(huge, 0, curve.Annual, bond.DefaultInitialGuess, config.DefaultConfig)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, res.Yield, 1.0/2048)
}

func TestSolveYield_ClampsNewtonUpdates(t *testing.T) {
	t.Parallel()

	cfs, err := bond.BulletSchedule(100, 0.05, 1, 30)
	require.NoError(t, err)
	target := bond.Price(cfs, 0.0004, curve.Annual)

	cfg := config.DefaultConfig
	got, err := bond.SolveYield(bond.CashFlowPricer(cfs), target, curve.Annual, bond.DefaultInitialGuess, cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.YieldFloor, got)
}

func TestSolveYield_InvalidArguments(t *testing.T) {
	t.Parallel()

	cfs := []bond.CashFlow{{Time: 1, Amount: 100}}
	pricer := bond.CashFlowPricer(cfs)

	_, err := bond.SolveYield(nil, 95, curve.Annual, 0.05, config.DefaultConfig)
	assert.ErrorIs(t, err, utils.ErrInvalidArgument)
	_, err = bond.SolveYield(pricer, math.NaN(), curve.Annual, 0.05, config.DefaultConfig)
	assert.ErrorIs(t, err, utils.ErrInvalidArgument)
	_, err = bond.SolveYield(pricer, 95, curve.Annual, math.Inf(1), config.DefaultConfig)
	assert.ErrorIs(t, err, utils.ErrInvalidArgument)
	_, err = bond.SolveYield(pricer, 95, curve.Compounding{}, 0.05, config.DefaultConfig)
	assert.ErrorIs(t, err, utils.ErrInvalidArgument)

	bad := config.DefaultConfig
	bad.YieldFloor, bad.YieldCeiling = 1, 0
	_, err = bond.SolveYield(pricer, 95, curve.Annual, 0.05, bad)
	assert.ErrorIs(t, err, utils.ErrInvalidArgument)
}

func TestSolveYield_LogsThroughConfiguredLogger(t *testing.T) {
	t.Parallel()

	var sink bytes.Buffer
	log := zerolog.New(&sink).Level(zerolog.DebugLevel)
	cfg := config.DefaultConfig
	cfg.Logger = &log

	cfs := []bond.CashFlow{{Time: 2, Amount: 100}}
	_, err := bond.SolveYield(bond.CashFlowPricer(cfs), 90, curve.Annual, 0.05, cfg)
	require.NoError(t, err)
	assert.Contains(t, sink.String(), "Bisection phase complete")
}
