package curve

import (
	"fmt"
	"math"
	"strings"

	"github.com/meenmo/ratelib/utils"
)

// Compounding relates a yield to a discount factor. It is either continuous or
// periodic with a positive number of periods per year; the zero value is not a
// valid convention.
type Compounding struct {
	continuous bool
	periods    int
}

var (
	Annual     = Compounding{periods: 1}
	Semiannual = Compounding{periods: 2}
	Quarterly  = Compounding{periods: 4}
	Monthly    = Compounding{periods: 12}
	Continuous = Compounding{continuous: true}
)

// Periodic returns a discrete convention with m compounding periods per year.
func Periodic(m int) (Compounding, error) {
	if m <= 0 {
		return Compounding{}, utils.Invalidf("Periodic: periods per year must be positive, got %d", m)
	}
	return Compounding{periods: m}, nil
}

// ParseCompounding accepts the convention names used in JSON and YAML inputs.
func ParseCompounding(s string) (Compounding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "annual", "1":
		return Annual, nil
	case "semiannual", "semi", "2":
		return Semiannual, nil
	case "quarterly", "4":
		return Quarterly, nil
	case "monthly", "12":
		return Monthly, nil
	case "continuous", "cont":
		return Continuous, nil
	default:
		return Compounding{}, utils.Invalidf("ParseCompounding: unknown compounding %q", s)
	}
}

// IsContinuous reports whether c is continuous compounding.
func (c Compounding) IsContinuous() bool {
	return c.continuous
}

// PeriodsPerYear returns m for a periodic convention; ok is false for Continuous.
func (c Compounding) PeriodsPerYear() (m int, ok bool) {
	if c.continuous {
		return 0, false
	}
	return c.periods, true
}

// Valid reports whether c is one of the constructible conventions.
func (c Compounding) Valid() bool {
	return c.continuous || c.periods > 0
}

func (c Compounding) String() string {
	if c.continuous {
		return "Continuous"
	}
	switch c.periods {
	case 1:
		return "Annual"
	case 2:
		return "Semiannual"
	case 4:
		return "Quarterly"
	case 12:
		return "Monthly"
	default:
		return fmt.Sprintf("Periodic(%d)", c.periods)
	}
}

// DiscountFactor is P(0,t) for a flat yield y:
//
//	continuous: exp(-y·t)
//	periodic:   (1 + y/m)^(-m·t)
func (c Compounding) DiscountFactor(y, t float64) float64 {
	if c.continuous {
		return math.Exp(-y * t)
	}
	m := float64(c.periods)
	return math.Pow(1.0+y/m, -m*t)
}

// DiscountFactorDelta is ∂P(0,t)/∂y:
//
//	continuous: -t·exp(-y·t)
//	periodic:   -t·(1 + y/m)^(-m·t-1)
func (c Compounding) DiscountFactorDelta(y, t float64) float64 {
	if c.continuous {
		return -t * math.Exp(-y*t)
	}
	m := float64(c.periods)
	return -t * math.Pow(1.0+y/m, -m*t-1.0)
}

// DiscountFactorGamma is ∂²P(0,t)/∂y²:
//
//	continuous: t²·exp(-y·t)
//	periodic:   (t² + t/m)·(1 + y/m)^(-m·t-2)
func (c Compounding) DiscountFactorGamma(y, t float64) float64 {
	if c.continuous {
		return t * t * math.Exp(-y*t)
	}
	m := float64(c.periods)
	return (t*t + t/m) * math.Pow(1.0+y/m, -m*t-2.0)
}

// ImpliedYield inverts DiscountFactor: the flat yield that discounts to df at time t.
func (c Compounding) ImpliedYield(df, t float64) (float64, error) {
	if !utils.IsFinite(df) || df <= 0 {
		return 0, utils.Invalidf("ImpliedYield: discount factor must be positive and finite, got %v", df)
	}
	if !utils.IsFinite(t) || t <= 0 {
		return 0, utils.Invalidf("ImpliedYield: time must be positive and finite, got %v", t)
	}
	if c.continuous {
		return -math.Log(df) / t, nil
	}
	m := float64(c.periods)
	return m * (math.Pow(1.0/df, 1.0/(m*t)) - 1.0), nil
}
