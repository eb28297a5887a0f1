package utils

import (
	"fmt"
	"strings"
	"time"
)

// DayCount names a day count convention used to turn two dates into a year fraction.
type DayCount string

const (
	Act365F    DayCount = "ACT/365F"
	Act360     DayCount = "ACT/360"
	Thirty360  DayCount = "30/360"  // 30/360 US (NASD)
	Thirty360E DayCount = "30E/360" // Eurobond basis
)

// ParseDayCount maps a convention name (case-insensitive) to a DayCount.
func ParseDayCount(s string) (DayCount, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ACT/365F", "ACT/365", "ACT_365F":
		return Act365F, nil
	case "ACT/360":
		return Act360, nil
	case "30/360", "30/360US", "THIRTY_360":
		return Thirty360, nil
	case "30E/360":
		return Thirty360E, nil
	default:
		return "", fmt.Errorf("ParseDayCount: unknown day count %q: %w", s, ErrInvalidArgument)
	}
}

// YearFraction computes year fraction between two dates using the specified day count convention.
// The dates are swapped when end precedes start, so the result is never negative.
// Unknown conventions fall back to ACT/365F.
func YearFraction(start, end time.Time, convention DayCount) float64 {
	if end.Before(start) {
		start, end = end, start
	}

	switch convention {
	case Act360:
		return Days(start, end) / 360.0
	case Thirty360:
		// 30/360 US (NASD): a start on the 31st moves to the 30th; an end on the
		// 31st moves to the 30th only when the (adjusted) start is the 30th.
		d1 := start.Day()
		if d1 == 31 {
			d1 = 30
		}
		d2 := end.Day()
		if d2 == 31 && d1 == 30 {
			d2 = 30
		}
		return thirty360(start, end, d1, d2)
	case Thirty360E:
		// D1 and D2 are capped at 30
		d1 := min(start.Day(), 30)
		d2 := min(end.Day(), 30)
		return thirty360(start, end, d1, d2)
	default:
		return Days(start, end) / 365.0
	}
}

func thirty360(start, end time.Time, d1, d2 int) float64 {
	y1, m1 := start.Year(), int(start.Month())
	y2, m2 := end.Year(), int(end.Month())
	return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
}
