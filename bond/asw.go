package bond

import (
	"fmt"
	"math"

	"github.com/meenmo/ratelib/curve"
	"github.com/meenmo/ratelib/utils"
)

// DiscountCurve is the curve capability the asset swap calculation needs.
type DiscountCurve interface {
	DiscountFactor(t float64) (float64, error)
}

var _ DiscountCurve = (*curve.DiscountCurve)(nil)

type ASWInput struct {
	DirtyPrice float64
	Notional   float64
	CashFlows  []CashFlow

	// FloatFrequency is the number of floating-leg payments per year used for PV01.
	FloatFrequency int

	DiscountCurve DiscountCurve
}

type ASWResult struct {
	SpreadBP float64
	PVBondRF float64
	PV01     float64
}

// ComputeASWSpread computes the asset swap spread (in bp) using the approximation:
//
//	ASW ≈ (PV_bond^{rf} - P_dirty) / PV01
//
// where PV_bond^{rf} discounts the bond on the curve and PV01 is the PV of receiving
// 1bp on a floating leg running from now to the last cash flow.
func ComputeASWSpread(in ASWInput) (ASWResult, error) {
	if err := utils.CheckFinite("ComputeASWSpread: DirtyPrice", in.DirtyPrice); err != nil {
		return ASWResult{}, err
	}
	if !utils.IsFinite(in.Notional) || in.Notional <= 0 {
		return ASWResult{}, utils.Invalidf("ComputeASWSpread: Notional must be positive")
	}
	if in.DiscountCurve == nil {
		return ASWResult{}, utils.Invalidf("ComputeASWSpread: DiscountCurve is required")
	}
	if len(in.CashFlows) == 0 {
		return ASWResult{}, utils.Invalidf("ComputeASWSpread: CashFlows are required")
	}
	if in.FloatFrequency <= 0 {
		return ASWResult{}, utils.Invalidf("ComputeASWSpread: FloatFrequency must be positive")
	}

	maturity := 0.0
	pvBondRF := 0.0
	for _, cf := range in.CashFlows {
		if cf.Time < 0 {
			continue
		}
		maturity = max(maturity, cf.Time)
		df, err := in.DiscountCurve.DiscountFactor(cf.Time)
		if err != nil {
			return ASWResult{}, fmt.Errorf("ComputeASWSpread: %w", err)
		}
		pvBondRF += cf.Amount * df
	}
	if maturity <= 0 {
		return ASWResult{}, utils.Invalidf("ComputeASWSpread: maturity must be after valuation")
	}

	pv01 := 0.0
	step := 1.0 / float64(in.FloatFrequency)
	periods := int(math.Ceil(maturity*float64(in.FloatFrequency) - 1e-9))
	for i := 1; i <= periods; i++ {
		start := float64(i-1) * step
		end := min(float64(i)*step, maturity)
		df, err := in.DiscountCurve.DiscountFactor(end)
		if err != nil {
			return ASWResult{}, fmt.Errorf("ComputeASWSpread: %w", err)
		}
		pv01 += in.Notional * (end - start) * basisPoint * df
	}
	if pv01 == 0 {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: PV01 is zero")
	}

	return ASWResult{
		SpreadBP: (pvBondRF - in.DirtyPrice) / pv01,
		PVBondRF: pvBondRF,
		PV01:     pv01,
	}, nil
}
