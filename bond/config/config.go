package config

import "github.com/rs/zerolog"

// Config holds the yield solver parameters.
//
// The defaults reproduce the legacy solver: a fixed bisection budget on [0, 1]
// (expanded to [0, 2]) followed by Newton-Raphson clamped to [0.001, 2.0]. Yields
// outside the clamp range cannot be recovered; widen YieldFloor/YieldCeiling (and
// the bracket) for instruments priced at negative or extreme yields.
type Config struct {
	// BracketLower and BracketUpper are the initial bisection bounds.
	BracketLower float64
	BracketUpper float64
	// BracketExpandedUpper replaces BracketUpper when the initial bounds do not bracket a root.
	BracketExpandedUpper float64

	// BisectionIterations is a fixed budget, not a convergence exit.
	BisectionIterations int

	// MaxNewtonIterations bounds the refinement phase.
	MaxNewtonIterations int

	// ConvergenceTolerance is the |price(y) − target| at which Newton stops.
	ConvergenceTolerance float64

	// DerivativeThreshold is the minimum derivative magnitude.
	// Below this, Newton iteration stops to avoid division by near-zero.
	DerivativeThreshold float64

	// The finite-difference step is max(MinDerivativeStep, RelativeDerivativeStep·|y|).
	MinDerivativeStep      float64
	RelativeDerivativeStep float64

	// YieldFloor and YieldCeiling clamp every Newton update.
	YieldFloor   float64
	YieldCeiling float64

	// Logger receives debug output; nil disables logging.
	Logger *zerolog.Logger
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	BracketLower:           0.0,
	BracketUpper:           1.0,
	BracketExpandedUpper:   2.0,
	BisectionIterations:    10,
	MaxNewtonIterations:    100,
	ConvergenceTolerance:   1e-12,
	DerivativeThreshold:    1e-15,
	MinDerivativeStep:      1e-8,
	RelativeDerivativeStep: 1e-6,
	YieldFloor:             0.001,
	YieldCeiling:           2.0,
}

// Log returns the configured logger or a disabled one.
func (c Config) Log() *zerolog.Logger {
	if c.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return c.Logger
}
