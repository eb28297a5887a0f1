package option

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/meenmo/ratelib/utils"
)

// confidenceZ is the two-sided 95% normal quantile used for the confidence half-width.
const confidenceZ = 1.96

// SimulatePrice estimates the discounted option value with DefaultSimulationConfig.
func SimulatePrice(f0, k, sigma, t, df float64, kind Kind, paths int) (float64, error) {
	return SimulatePriceWithConfig(f0, k, sigma, t, df, kind, paths, DefaultSimulationConfig())
}

// SimulatePriceWithConfig estimates the discounted option value D·mean(payoff).
func SimulatePriceWithConfig(f0, k, sigma, t, df float64, kind Kind, paths int, cfg SimulationConfig) (float64, error) {
	res, err := SimulateWithStats(f0, k, sigma, t, df, kind, paths, cfg)
	if err != nil {
		return 0, err
	}
	return res.Price, nil
}

// SimulateWithStats runs the simulation and reports the estimate with its error statistics.
//
//	price = D·Σp/n
//	SE    = D·sqrt(var(p)/n)
//	CI95  = 1.96·SE
//
// n counts every payoff, so with antithetic variates n = 2·paths. An expired option
// (t <= 0) returns the discounted intrinsic value without drawing.
func SimulateWithStats(f0, k, sigma, t, df float64, kind Kind, paths int, cfg SimulationConfig) (SimulationResult, error) {
	if err := validateInputs(f0, k, sigma, t, df, paths); err != nil {
		return SimulationResult{}, err
	}
	if err := cfg.validate(); err != nil {
		return SimulationResult{}, fmt.Errorf("SimulateWithStats: %w", err)
	}

	if t <= 0 {
		return SimulationResult{
			Price:                   df * kind.Payoff(f0, k),
			VarianceReductionFactor: 1.0,
		}, nil
	}

	model := newLognormal(f0, k, sigma, t, kind)
	batches := (paths + cfg.BatchSize - 1) / cfg.BatchSize

	cfg.logger().Debug().
		Int("paths", paths).
		Int("batch_size", cfg.BatchSize).
		Int("batches", batches).
		Int("workers", cfg.Workers).
		Bool("antithetic", cfg.UseAntitheticVariates).
		Bool("vectorized", cfg.EnableBatchVectorization).
		Int64("seed", cfg.RandomSeed).
		Msg("Running Monte Carlo simulation")

	var acc accumulator
	if cfg.Workers > 1 && batches > 1 {
		var err error
		acc, err = runParallel(model, paths, batches, cfg)
		if err != nil {
			return SimulationResult{}, fmt.Errorf("SimulateWithStats: %w", err)
		}
	} else {
		acc = runSequential(model, paths, cfg)
	}

	return summarize(acc, df, cfg.UseAntitheticVariates), nil
}

func validateInputs(f0, k, sigma, t, df float64, paths int) error {
	for _, in := range []struct {
		name string
		v    float64
	}{
		{"forward", f0},
		{"strike", k},
		{"volatility", sigma},
		{"expiry", t},
		{"discount factor", df},
	} {
		if err := utils.CheckFinite("SimulateWithStats: "+in.name, in.v); err != nil {
			return err
		}
	}
	if sigma < 0 {
		return utils.Invalidf("SimulateWithStats: volatility must not be negative, got %v", sigma)
	}
	if paths <= 0 {
		return utils.Invalidf("SimulateWithStats: path count must be positive, got %d", paths)
	}
	return nil
}

// runSequential consumes one draw stream across all batches, so the batch size
// only changes how many draws are held at once.
func runSequential(model lognormal, paths int, cfg SimulationConfig) accumulator {
	src := newNormalSource(cfg.RandomSeed, sequentialStream)

	var acc accumulator
	var buf *batchBuffers
	if cfg.EnableBatchVectorization {
		buf = newBatchBuffers(min(cfg.BatchSize, paths), cfg.UseAntitheticVariates)
	}

	for done := 0; done < paths; done += cfg.BatchSize {
		n := min(cfg.BatchSize, paths-done)
		if buf != nil {
			model.runVector(src, n, cfg.UseAntitheticVariates, &acc, buf)
		} else {
			model.runScalar(src, n, cfg.UseAntitheticVariates, &acc)
		}
	}
	return acc
}

// runParallel gives batch b its own stream (seed, b+1) and merges the partial sums
// in batch order once every worker is done.
func runParallel(model lognormal, paths, batches int, cfg SimulationConfig) (accumulator, error) {
	partial := make([]accumulator, batches)

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for b := 0; b < batches; b++ {
		g.Go(func() error {
			n := min(cfg.BatchSize, paths-b*cfg.BatchSize)
			src := newNormalSource(cfg.RandomSeed, uint64(b)+1)
			if cfg.EnableBatchVectorization {
				model.runVector(src, n, cfg.UseAntitheticVariates, &partial[b], newBatchBuffers(n, cfg.UseAntitheticVariates))
			} else {
				model.runScalar(src, n, cfg.UseAntitheticVariates, &partial[b])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return accumulator{}, err
	}

	var acc accumulator
	for _, p := range partial {
		acc.merge(p)
	}
	return acc, nil
}

func summarize(acc accumulator, df float64, antithetic bool) SimulationResult {
	n := float64(acc.n)
	se := df * math.Sqrt(variance(acc.sum, acc.sumSq, acc.n)/n)

	vr := 1.0
	if antithetic {
		pairVar := variance(acc.pairSum, acc.pairSumSq, acc.pairs)
		if pairVar > 0 {
			vr = variance(acc.plainSum, acc.plainSumSq, acc.pairs) / pairVar
		}
	}

	return SimulationResult{
		Price:                   df * acc.sum / n,
		StandardError:           se,
		ConfidenceInterval95:    confidenceZ * se,
		EffectivePathCount:      acc.n,
		VarianceReductionFactor: vr,
	}
}
