package bonds

import (
	"time"

	"github.com/meenmo/ratelib/bond"
	"github.com/meenmo/ratelib/utils"
)

// DatedCashflow is a scheduled bond payment in currency units.
type DatedCashflow struct {
	Date      time.Time
	Coupon    float64
	Principal float64
}

// CashflowCents mirrors the Bloomberg-style cashflow feed where coupon/principal
// are stored as integer minor units (e.g., cents for EUR).
type CashflowCents struct {
	Date           time.Time
	CouponCents    int64
	PrincipalCents int64
}

func (c CashflowCents) ToDated() DatedCashflow {
	return DatedCashflow{
		Date:      c.Date,
		Coupon:    float64(c.CouponCents) / 100.0,
		Principal: float64(c.PrincipalCents) / 100.0,
	}
}

// ToCashFlows converts dated payments into year-fraction cash flows measured from
// settlement with the given day count. Payments dated before settlement are dropped.
func ToCashFlows(settlement time.Time, dc utils.DayCount, in []DatedCashflow) []bond.CashFlow {
	out := make([]bond.CashFlow, 0, len(in))
	for _, cf := range in {
		if cf.Date.Before(settlement) {
			continue
		}
		out = append(out, bond.CashFlow{
			Time:   utils.YearFraction(settlement, cf.Date, dc),
			Amount: cf.Coupon + cf.Principal,
		})
	}
	return out
}

// CentsToCashFlows is ToCashFlows for a minor-unit feed.
func CentsToCashFlows(settlement time.Time, dc utils.DayCount, in []CashflowCents) []bond.CashFlow {
	dated := make([]DatedCashflow, 0, len(in))
	for _, cf := range in {
		dated = append(dated, cf.ToDated())
	}
	return ToCashFlows(settlement, dc, dated)
}
