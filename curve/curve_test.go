package curve_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/ratelib/curve"
	"github.com/meenmo/ratelib/utils"
)

func TestFlatCurve_AnnualDiscountFactor(t *testing.T) {
	t.Parallel()

	crv, err := curve.NewFlatCurve(0.05, curve.Annual, utils.Act365F)
	require.NoError(t, err)

	df, err := crv.DiscountFactor(1.0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/1.05, df, 1e-12)
	assert.InDelta(t, 0.952381, df, 1e-6)
}

func TestFlatCurve_Conventions(t *testing.T) {
	t.Parallel()

	y := 0.04
	tests := []struct {
		name string
		cmp  curve.Compounding
		want func(t float64) float64
	}{
		{"continuous", curve.Continuous, func(t float64) float64 { return math.Exp(-y * t) }},
		{"annual", curve.Annual, func(t float64) float64 { return math.Pow(1+y, -t) }},
		{"semiannual", curve.Semiannual, func(t float64) float64 { return math.Pow(1+y/2, -2*t) }},
		{"quarterly", curve.Quarterly, func(t float64) float64 { return math.Pow(1+y/4, -4*t) }},
		{"monthly", curve.Monthly, func(t float64) float64 { return math.Pow(1+y/12, -12*t) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			crv, err := curve.NewFlatCurve(y, tc.cmp, utils.Act365F)
			require.NoError(t, err)

			for _, tm := range []float64{0.25, 1, 2.5, 10, 30} {
				df, err := crv.DiscountFactor(tm)
				require.NoError(t, err)
				assert.InDelta(t, tc.want(tm), df, 1e-12, "t=%v", tm)
			}
		})
	}
}

func TestDiscountFactor_AtOrBeforeZeroIsOne(t *testing.T) {
	t.Parallel()

	flat, err := curve.NewFlatCurve(0.07, curve.Continuous, utils.Act365F)
	require.NoError(t, err)
	boot, err := curve.NewBootstrappedCurve([]curve.ZeroQuote{{Time: 1, DF: 0.9}})
	require.NoError(t, err)

	for _, crv := range []*curve.DiscountCurve{flat, boot} {
		for _, tm := range []float64{0, -1, -100} {
			df, err := crv.DiscountFactor(tm)
			require.NoError(t, err)
			assert.Equal(t, 1.0, df)
		}
	}
}

func TestFlatCurve_StrictlyDecreasing(t *testing.T) {
	t.Parallel()

	for _, cmp := range []curve.Compounding{curve.Continuous, curve.Annual, curve.Semiannual, curve.Monthly} {
		crv, err := curve.NewFlatCurve(0.03, cmp, utils.Act365F)
		require.NoError(t, err)

		prev := 1.0
		for i := 1; i <= 120; i++ {
			df, err := crv.DiscountFactor(float64(i) * 0.25)
			require.NoError(t, err)
			assert.Less(t, df, prev, "%s at step %d", cmp, i)
			prev = df
		}
	}
}

func TestBootstrappedCurve_LogLinearInterpolation(t *testing.T) {
	t.Parallel()

	crv, err := curve.NewBootstrappedCurve([]curve.ZeroQuote{
		{Time: 0.5, DF: 0.98},
		{Time: 1.0, DF: 0.95},
		{Time: 2.0, DF: 0.90},
	})
	require.NoError(t, err)

	df, err := crv.DiscountFactor(1.5)
	require.NoError(t, err)

	want := math.Exp(0.5 * (math.Log(0.95) + math.Log(0.90)))
	assert.InDelta(t, want, df, 1e-12)
	assert.InDelta(t, 0.92466, df, 1e-5)
	// Naive linear interpolation would give 0.925.
	assert.Greater(t, math.Abs(df-0.925), 1e-4)
}

func TestBootstrappedCurve_ExactPillarsAndExtrapolation(t *testing.T) {
	t.Parallel()

	quotes := []curve.ZeroQuote{
		{Time: 2.0, DF: 0.90},
		{Time: 0.5, DF: 0.98},
		{Time: 1.0, DF: 0.95},
	}
	crv, err := curve.NewBootstrappedCurve(quotes)
	require.NoError(t, err)

	sorted := crv.Quotes()
	require.Len(t, sorted, 3)
	assert.Equal(t, 0.5, sorted[0].Time)
	assert.Equal(t, 2.0, sorted[2].Time)
	// Input is copied, not reordered in place.
	assert.Equal(t, 2.0, quotes[0].Time)

	for _, q := range quotes {
		df, err := crv.DiscountFactor(q.Time)
		require.NoError(t, err)
		assert.Equal(t, q.DF, df, "pillar %v", q.Time)
	}

	before, err := crv.DiscountFactor(0.1)
	require.NoError(t, err)
	assert.Equal(t, 0.98, before)

	after, err := crv.DiscountFactor(50)
	require.NoError(t, err)
	assert.Equal(t, 0.90, after)
}

func TestBootstrappedCurve_InvalidQuotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		quotes []curve.ZeroQuote
	}{
		{"empty", nil},
		{"zero time", []curve.ZeroQuote{{Time: 0, DF: 0.9}}},
		{"negative time", []curve.ZeroQuote{{Time: -1, DF: 0.9}}},
		{"nan time", []curve.ZeroQuote{{Time: math.NaN(), DF: 0.9}}},
		{"inf time", []curve.ZeroQuote{{Time: math.Inf(1), DF: 0.9}}},
		{"zero df", []curve.ZeroQuote{{Time: 1, DF: 0}}},
		{"negative df", []curve.ZeroQuote{{Time: 1, DF: -0.5}}},
		{"nan df", []curve.ZeroQuote{{Time: 1, DF: math.NaN()}}},
		{"one bad among good", []curve.ZeroQuote{{Time: 1, DF: 0.95}, {Time: 2, DF: math.Inf(1)}}},
		{"duplicate time", []curve.ZeroQuote{{Time: 0.5, DF: 0.98}, {Time: 1, DF: 0.95}, {Time: 1, DF: 0.90}, {Time: 2, DF: 0.85}}},
		{"duplicate time unsorted", []curve.ZeroQuote{{Time: 2, DF: 0.85}, {Time: 1, DF: 0.95}, {Time: 2, DF: 0.85}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := curve.NewBootstrappedCurve(tc.quotes)
			assert.ErrorIs(t, err, utils.ErrInvalidArgument)
		})
	}
}

func TestNewFlatCurve_RejectsNonFiniteYield(t *testing.T) {
	t.Parallel()

	for _, y := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := curve.NewFlatCurve(y, curve.Annual, utils.Act365F)
		assert.ErrorIs(t, err, utils.ErrInvalidArgument)
	}

	_, err := curve.NewFlatCurve(0.05, curve.Compounding{}, utils.Act365F)
	assert.ErrorIs(t, err, utils.ErrInvalidArgument)

	neg, err := curve.NewFlatCurve(-0.005, curve.Continuous, utils.Act365F)
	require.NoError(t, err)
	df, err := neg.DiscountFactor(2)
	require.NoError(t, err)
	assert.Greater(t, df, 1.0)
}

func TestNewFlatCurve_RejectsYieldBelowPeriodicFloor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		y    float64
		m    curve.Compounding
	}{
		{"annual at -100%", -1, curve.Annual},
		{"annual below -100%", -2.5, curve.Annual},
		{"semiannual at -200%", -2, curve.Semiannual},
		{"monthly below -1200%", -13, curve.Monthly},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := curve.NewFlatCurve(tc.y, tc.m, utils.Act365F)
			assert.ErrorIs(t, err, utils.ErrInvalidArgument)
		})
	}

	// Deeply negative but still above the floor: factors stay finite.
	crv, err := curve.NewFlatCurve(-0.5, curve.Annual, utils.Act365F)
	require.NoError(t, err)
	df, err := crv.DiscountFactor(1.5)
	require.NoError(t, err)
	assert.InDelta(t, math.Pow(0.5, -1.5), df, 1e-12)

	cont, err := curve.NewFlatCurve(-3, curve.Continuous, utils.Act365F)
	require.NoError(t, err)
	df, err = cont.DiscountFactor(1)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(3), df, 1e-9)
}

func TestDiscountFactor_RejectsNonFiniteTime(t *testing.T) {
	t.Parallel()

	crv, err := curve.NewFlatCurve(0.05, curve.Annual, utils.Act365F)
	require.NoError(t, err)

	for _, tm := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := crv.DiscountFactor(tm)
		assert.ErrorIs(t, err, utils.ErrInvalidArgument)
		_, err = crv.ForwardPrice(tm)
		assert.ErrorIs(t, err, utils.ErrInvalidArgument)
	}
}

func TestForwardPrice_IsReciprocalOfDiscountFactor(t *testing.T) {
	t.Parallel()

	crv, err := curve.NewBootstrappedCurve([]curve.ZeroQuote{
		{Time: 1, DF: 0.97},
		{Time: 5, DF: 0.82},
		{Time: 10, DF: 0.64},
	})
	require.NoError(t, err)

	for _, tm := range []float64{0, 0.5, 3, 6, 12} {
		df, err := crv.DiscountFactor(tm)
		require.NoError(t, err)
		fwd, err := crv.ForwardPrice(tm)
		require.NoError(t, err)
		assert.InDelta(t, 1.0/df, fwd, 1e-14)
	}
}

func TestDiscountFactorOn_UsesDayCount(t *testing.T) {
	t.Parallel()

	settlement := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	pay := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	crv, err := curve.NewFlatCurve(0.05, curve.Continuous, utils.Thirty360)
	require.NoError(t, err)

	df, err := crv.DiscountFactorOn(settlement, pay)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-0.05), df, 1e-12)

	past, err := crv.DiscountFactorOn(settlement, settlement.AddDate(0, -1, 0))
	require.NoError(t, err)
	assert.Equal(t, 1.0, past)
}

func TestZeroRate_RoundTripsFlatYield(t *testing.T) {
	t.Parallel()

	for _, cmp := range []curve.Compounding{curve.Continuous, curve.Annual, curve.Quarterly} {
		crv, err := curve.NewFlatCurve(0.0425, cmp, utils.Act365F)
		require.NoError(t, err)

		z, err := crv.ZeroRate(7, cmp)
		require.NoError(t, err)
		assert.InDelta(t, 0.0425, z, 1e-12, "%s", cmp)
	}
}
