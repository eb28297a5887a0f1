package options

import (
	"fmt"

	"github.com/meenmo/ratelib/curve"
	"github.com/meenmo/ratelib/option"
	"github.com/meenmo/ratelib/utils"
)

// DefaultBondTenor is the underlying bond's tenor in years beyond expiry.
const DefaultBondTenor = 5.0

// EuropeanBondOption is a European option on a zero-coupon bond maturing
// BondTenor years after Expiry.
type EuropeanBondOption struct {
	Kind      option.Kind
	Strike    float64
	Expiry    float64
	BondTenor float64
}

// NewEuropeanBondOption returns an option on a DefaultBondTenor bond.
func NewEuropeanBondOption(kind option.Kind, strike, expiry float64) EuropeanBondOption {
	return EuropeanBondOption{Kind: kind, Strike: strike, Expiry: expiry, BondTenor: DefaultBondTenor}
}

// marketInputs reads the Black-76 forward and discount factor from crv.
func (o EuropeanBondOption) marketInputs(crv *curve.DiscountCurve) (forward, df float64, err error) {
	if crv == nil {
		return 0, 0, utils.Invalidf("EuropeanBondOption: curve is required")
	}
	if err := utils.CheckFinite("EuropeanBondOption: strike", o.Strike); err != nil {
		return 0, 0, err
	}
	if err := utils.CheckFinite("EuropeanBondOption: expiry", o.Expiry); err != nil {
		return 0, 0, err
	}
	if !utils.IsFinite(o.BondTenor) || o.BondTenor < 0 {
		return 0, 0, utils.Invalidf("EuropeanBondOption: bond tenor must be non-negative, got %v", o.BondTenor)
	}

	forward, err = crv.ForwardPrice(o.Expiry + o.BondTenor)
	if err != nil {
		return 0, 0, fmt.Errorf("EuropeanBondOption: %w", err)
	}
	df, err = crv.DiscountFactor(o.Expiry)
	if err != nil {
		return 0, 0, fmt.Errorf("EuropeanBondOption: %w", err)
	}
	return forward, df, nil
}

// PriceBlack prices the option with Black-76.
func (o EuropeanBondOption) PriceBlack(crv *curve.DiscountCurve, vol float64) (float64, error) {
	f, df, err := o.marketInputs(crv)
	if err != nil {
		return 0, err
	}
	if err := utils.CheckFinite("EuropeanBondOption: volatility", vol); err != nil {
		return 0, err
	}
	return option.Black76Price(f, o.Strike, o.Expiry, vol, df, o.Kind), nil
}

// VegaBlack is the Black-76 vega of the option.
func (o EuropeanBondOption) VegaBlack(crv *curve.DiscountCurve, vol float64) (float64, error) {
	f, df, err := o.marketInputs(crv)
	if err != nil {
		return 0, err
	}
	if err := utils.CheckFinite("EuropeanBondOption: volatility", vol); err != nil {
		return 0, err
	}
	return option.Black76Vega(f, o.Strike, o.Expiry, vol, df), nil
}

// PriceMC prices the option by simulation. paths <= 0 selects option.DefaultPathCount.
func (o EuropeanBondOption) PriceMC(crv *curve.DiscountCurve, vol float64, paths int, cfg option.SimulationConfig) (float64, error) {
	res, err := o.PriceMCWithStats(crv, vol, paths, cfg)
	if err != nil {
		return 0, err
	}
	return res.Price, nil
}

// PriceMCWithStats is PriceMC with the simulation's error statistics.
func (o EuropeanBondOption) PriceMCWithStats(crv *curve.DiscountCurve, vol float64, paths int, cfg option.SimulationConfig) (option.SimulationResult, error) {
	f, df, err := o.marketInputs(crv)
	if err != nil {
		return option.SimulationResult{}, err
	}
	if paths <= 0 {
		paths = option.DefaultPathCount
	}
	res, err := option.SimulateWithStats(f, o.Strike, vol, o.Expiry, df, o.Kind, paths, cfg)
	if err != nil {
		return option.SimulationResult{}, fmt.Errorf("EuropeanBondOption: %w", err)
	}
	return res, nil
}
