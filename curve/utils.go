package curve

import (
	"math"
	"sort"
)

// findBracket locates the pillar interval containing t in quotes sorted by time.
//
// It returns idx such that quotes[idx-1].Time < t <= quotes[idx].Time. idx == 0 means
// t is at or before the first pillar; idx == len(quotes) means t is past the last.
func findBracket(quotes []ZeroQuote, t float64) int {
	// Binary search for first pillar >= t
	return sort.Search(len(quotes), func(i int) bool {
		return quotes[i].Time >= t
	})
}

// logLinear interpolates ln(df) linearly in time between two pillars.
func logLinear(q0, q1 ZeroQuote, t float64) float64 {
	if q1.Time == q0.Time {
		return q0.DF
	}
	w := (t - q0.Time) / (q1.Time - q0.Time)
	return math.Exp(math.Log(q0.DF) + w*(math.Log(q1.DF)-math.Log(q0.DF)))
}

// linear interpolates the raw discount factor; only reached when a pillar is non-positive.
func linear(q0, q1 ZeroQuote, t float64) float64 {
	if q1.Time == q0.Time {
		return q0.DF
	}
	w := (t - q0.Time) / (q1.Time - q0.Time)
	return q0.DF + w*(q1.DF-q0.DF)
}
