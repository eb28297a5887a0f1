package option

import (
	"github.com/rs/zerolog"

	"github.com/meenmo/ratelib/utils"
)

const (
	// DefaultBatchSize bounds the working set of one vectorized batch.
	DefaultBatchSize = 8000
	// DefaultRandomSeed makes runs reproducible when callers do not pick a seed.
	DefaultRandomSeed int64 = 42
	// DefaultPathCount is used by instruments that do not specify a path count.
	DefaultPathCount = 100_000
)

// SimulationConfig controls one Monte Carlo run. It is a plain value passed per call.
type SimulationConfig struct {
	// BatchSize is the number of base draws evaluated together (the last batch may be smaller).
	BatchSize int
	// UseAntitheticVariates pairs every draw Z with −Z, doubling the effective path count.
	UseAntitheticVariates bool
	// RandomSeed seeds the normal-variate stream.
	RandomSeed int64
	// EnableBatchVectorization evaluates batches as arrays instead of a per-path loop.
	// It never changes the result.
	EnableBatchVectorization bool
	// Workers > 1 evaluates batches concurrently, each batch on its own stream
	// derived from (RandomSeed, batch index). 0 and 1 run sequentially on one stream.
	Workers int
	// Logger receives debug output; nil disables logging.
	Logger *zerolog.Logger
}

// DefaultSimulationConfig returns the configuration used by SimulatePrice.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		BatchSize:                DefaultBatchSize,
		UseAntitheticVariates:    true,
		RandomSeed:               DefaultRandomSeed,
		EnableBatchVectorization: true,
		Workers:                  1,
	}
}

func (c SimulationConfig) validate() error {
	if c.BatchSize <= 0 {
		return utils.Invalidf("SimulationConfig: batch size must be positive, got %d", c.BatchSize)
	}
	if c.Workers < 0 {
		return utils.Invalidf("SimulationConfig: workers must not be negative, got %d", c.Workers)
	}
	return nil
}

func (c SimulationConfig) logger() *zerolog.Logger {
	if c.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return c.Logger
}

// SimulationResult is the outcome of one SimulateWithStats call.
type SimulationResult struct {
	Price                float64
	StandardError        float64
	ConfidenceInterval95 float64 // half-width, 1.96 standard errors
	EffectivePathCount   int
	// VarianceReductionFactor compares the plain estimator built from the same draws
	// with the antithetic one; 1 when antithetic variates are off.
	VarianceReductionFactor float64
}
