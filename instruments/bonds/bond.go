package bonds

import (
	"fmt"
	"sort"

	"github.com/meenmo/ratelib/bond"
	"github.com/meenmo/ratelib/bond/config"
	"github.com/meenmo/ratelib/curve"
	"github.com/meenmo/ratelib/utils"
)

// Bond is a fixed-coupon bond described by its remaining cash flows.
// Amounts are in the same units as Face.
type Bond struct {
	Face      float64
	cashFlows []bond.CashFlow
}

// NewBond builds a bullet bond; see bond.BulletSchedule for the schedule rules.
func NewBond(face, couponRate float64, frequency int, maturity float64) (*Bond, error) {
	cfs, err := bond.BulletSchedule(face, couponRate, frequency, maturity)
	if err != nil {
		return nil, fmt.Errorf("NewBond: %w", err)
	}
	return &Bond{Face: face, cashFlows: cfs}, nil
}

// NewBondFromCashFlows builds a bond from an explicit schedule, e.g. one converted
// with ToCashFlows. The flows are copied and sorted by time.
func NewBondFromCashFlows(face float64, cfs []bond.CashFlow) (*Bond, error) {
	if !utils.IsFinite(face) || face <= 0 {
		return nil, utils.Invalidf("NewBondFromCashFlows: face must be positive, got %v", face)
	}
	out := make([]bond.CashFlow, len(cfs))
	copy(out, cfs)
	for _, cf := range out {
		if err := utils.CheckFinite("NewBondFromCashFlows: cash flow time", cf.Time); err != nil {
			return nil, err
		}
		if err := utils.CheckFinite("NewBondFromCashFlows: cash flow amount", cf.Amount); err != nil {
			return nil, err
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return &Bond{Face: face, cashFlows: out}, nil
}

// CashFlows returns a copy of the bond's schedule.
func (b *Bond) CashFlows() []bond.CashFlow {
	out := make([]bond.CashFlow, len(b.cashFlows))
	copy(out, b.cashFlows)
	return out
}

// Price discounts every cash flow on crv.
func (b *Bond) Price(crv *curve.DiscountCurve) (float64, error) {
	var p float64
	for _, cf := range b.cashFlows {
		df, err := crv.DiscountFactor(cf.Time)
		if err != nil {
			return 0, fmt.Errorf("Bond.Price: %w", err)
		}
		p += cf.Amount * df
	}
	return p, nil
}

// PriceAtYield prices the bond at a single yield.
func (b *Bond) PriceAtYield(y float64, m curve.Compounding) float64 {
	return bond.Price(b.cashFlows, y, m)
}

// YieldFromPrice solves for the yield that reproduces price.
func (b *Bond) YieldFromPrice(price float64, m curve.Compounding, cfg config.Config) (float64, error) {
	y, err := bond.SolveYield(bond.CashFlowPricer(b.cashFlows), price, m, bond.DefaultInitialGuess, cfg)
	if err != nil {
		return 0, fmt.Errorf("Bond.YieldFromPrice: %w", err)
	}
	return y, nil
}

// ModifiedDuration evaluates the duration at the yield implied by crv.
func (b *Bond) ModifiedDuration(crv *curve.DiscountCurve, m curve.Compounding) (float64, error) {
	y, err := b.impliedYield(crv, m)
	if err != nil {
		return 0, err
	}
	return bond.ModifiedDuration(b.cashFlows, y, m), nil
}

// Convexity evaluates the convexity at the yield implied by crv.
func (b *Bond) Convexity(crv *curve.DiscountCurve, m curve.Compounding) (float64, error) {
	y, err := b.impliedYield(crv, m)
	if err != nil {
		return 0, err
	}
	return bond.Convexity(b.cashFlows, y, m), nil
}

// DV01 evaluates the price change per basis point at the yield implied by crv.
func (b *Bond) DV01(crv *curve.DiscountCurve, m curve.Compounding) (float64, error) {
	y, err := b.impliedYield(crv, m)
	if err != nil {
		return 0, err
	}
	return bond.DV01(b.cashFlows, y, m), nil
}

// ASWSpread computes the asset swap spread of the bond against crv with Notional = Face.
func (b *Bond) ASWSpread(crv *curve.DiscountCurve, dirtyPrice float64, floatFrequency int) (bond.ASWResult, error) {
	return bond.ComputeASWSpread(bond.ASWInput{
		DirtyPrice:     dirtyPrice,
		Notional:       b.Face,
		CashFlows:      b.cashFlows,
		FloatFrequency: floatFrequency,
		DiscountCurve:  crv,
	})
}

// impliedYield reads the curve's zero rate at the last cash flow, falling back to
// bond.DefaultInitialGuess when there is no cash flow or the factor is not positive.
func (b *Bond) impliedYield(crv *curve.DiscountCurve, m curve.Compounding) (float64, error) {
	if crv == nil {
		return 0, utils.Invalidf("Bond: curve is required")
	}
	if !m.Valid() {
		return 0, utils.Invalidf("Bond: compounding convention is required")
	}
	if len(b.cashFlows) == 0 {
		return bond.DefaultInitialGuess, nil
	}

	t := b.cashFlows[len(b.cashFlows)-1].Time
	df, err := crv.DiscountFactor(t)
	if err != nil {
		return 0, fmt.Errorf("Bond: %w", err)
	}
	if df <= 0 || t <= 0 {
		return bond.DefaultInitialGuess, nil
	}
	y, err := m.ImpliedYield(df, t)
	if err != nil {
		return bond.DefaultInitialGuess, nil
	}
	return y, nil
}
