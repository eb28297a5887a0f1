package option

import (
	"strings"

	"github.com/meenmo/ratelib/utils"
)

// Kind is the exercise direction of a European option.
type Kind int

const (
	Call Kind = iota
	Put
)

func (k Kind) String() string {
	if k == Put {
		return "Put"
	}
	return "Call"
}

// ParseKind maps "call"/"put" (any case, also "c"/"p") to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	default:
		return Call, utils.Invalidf("ParseKind: unknown option kind %q", s)
	}
}

// Payoff is the undiscounted exercise value at terminal forward ft.
func (k Kind) Payoff(ft, strike float64) float64 {
	if k == Put {
		return max(strike-ft, 0.0)
	}
	return max(ft-strike, 0.0)
}
