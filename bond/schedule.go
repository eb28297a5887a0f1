package bond

import (
	"math"

	"github.com/meenmo/ratelib/utils"
)

// BulletSchedule generates the cash flows of a fixed-coupon bullet bond.
//
// Coupons of couponRate·face/couponsPerYear fall every 1/couponsPerYear years; the
// last one is moved exactly to maturity and carries the principal. When maturity is
// shorter than half a coupon period the schedule is a single principal payment.
// Negative coupon rates are allowed.
func BulletSchedule(face, couponRate float64, couponsPerYear int, maturityYears float64) ([]CashFlow, error) {
	if err := utils.CheckFinite("BulletSchedule: face value", face); err != nil {
		return nil, err
	}
	if err := utils.CheckFinite("BulletSchedule: coupon rate", couponRate); err != nil {
		return nil, err
	}
	if err := utils.CheckFinite("BulletSchedule: maturity", maturityYears); err != nil {
		return nil, err
	}
	if maturityYears <= 0 {
		return nil, utils.Invalidf("BulletSchedule: maturity must be positive, got %v", maturityYears)
	}
	if couponsPerYear <= 0 {
		return nil, utils.Invalidf("BulletSchedule: coupon frequency must be positive, got %d", couponsPerYear)
	}
	if face <= 0 {
		return nil, utils.Invalidf("BulletSchedule: face value must be positive, got %v", face)
	}

	coupon := couponRate * face / float64(couponsPerYear)
	step := 1.0 / float64(couponsPerYear)
	n := int(math.Round(maturityYears * float64(couponsPerYear)))

	if n == 0 {
		return []CashFlow{{Time: maturityYears, Amount: face}}, nil
	}

	cfs := make([]CashFlow, 0, n)
	for i := 1; i <= n; i++ {
		t := float64(i) * step
		if i == n {
			t = maturityYears
		}
		cfs = append(cfs, CashFlow{Time: t, Amount: coupon})
	}
	cfs[n-1].Amount += face

	return cfs, nil
}
