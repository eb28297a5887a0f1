package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/meenmo/ratelib/curve"
	"github.com/meenmo/ratelib/instruments/options"
	"github.com/meenmo/ratelib/internal/envconfig"
	"github.com/meenmo/ratelib/logger"
	"github.com/meenmo/ratelib/option"
	"github.com/meenmo/ratelib/utils"
)

const outputDecimals = 10

// scenario describes one option to price. With Curve set, the forward and discount
// factor come from a flat curve and a zero-coupon bond of BondTenor years.
type scenario struct {
	Forward        float64       `yaml:"forward"`
	Strike         float64       `yaml:"strike"`
	Volatility     float64       `yaml:"volatility"`
	Expiry         float64       `yaml:"expiry"`
	DiscountFactor float64       `yaml:"discount_factor"`
	Kind           string        `yaml:"kind"`
	Paths          []int         `yaml:"paths"`
	Curve          *curveSpec    `yaml:"curve,omitempty"`
	Simulation     simulationSet `yaml:"simulation"`
}

type curveSpec struct {
	Yield       float64 `yaml:"yield"`
	Compounding string  `yaml:"compounding"`
	BondTenor   float64 `yaml:"bond_tenor"`
}

// simulationSet overrides the environment's simulation settings field by field.
type simulationSet struct {
	BatchSize  *int   `yaml:"batch_size"`
	Antithetic *bool  `yaml:"antithetic"`
	Seed       *int64 `yaml:"seed"`
	Vectorize  *bool  `yaml:"vectorize"`
	Workers    *int   `yaml:"workers"`
}

type row struct {
	Method         string  `json:"method"`
	Paths          int     `json:"paths,omitempty"`
	Price          float64 `json:"price"`
	StandardError  float64 `json:"standard_error,omitempty"`
	CI95           float64 `json:"ci95,omitempty"`
	EffectivePaths int     `json:"effective_paths,omitempty"`
	VRFactor       float64 `json:"variance_reduction_factor,omitempty"`
	AbsError       float64 `json:"abs_error_vs_black,omitempty"`
	ElapsedMS      float64 `json:"elapsed_ms"`
}

func main() {
	scenarioPath := flag.String("scenario", "", "YAML scenario file")
	envFile := flag.String("env", "", "Optional .env file")
	f0 := flag.Float64("f0", 1.3, "Forward price")
	k := flag.Float64("k", 1.25, "Strike")
	sigma := flag.Float64("sigma", 0.2, "Volatility")
	expiry := flag.Float64("t", 1.0, "Time to expiry in years")
	df := flag.Float64("df", 0.95, "Discount factor to expiry")
	kind := flag.String("kind", "call", "call or put")
	paths := flag.String("paths", "1000,10000,100000,1000000", "Comma-separated path counts")
	flag.Parse()

	cfg, err := envconfig.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)
	cfg.Simulation.Logger = &log

	sc := scenario{
		Forward:        *f0,
		Strike:         *k,
		Volatility:     *sigma,
		Expiry:         *expiry,
		DiscountFactor: *df,
		Kind:           *kind,
	}
	if sc.Paths, err = parsePaths(*paths); err != nil {
		fmt.Fprintf(os.Stderr, "paths: %v\n", err)
		os.Exit(2)
	}

	if path := strings.TrimSpace(*scenarioPath); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read scenario: %v\n", err)
			os.Exit(1)
		}
		if err := yaml.Unmarshal(raw, &sc); err != nil {
			fmt.Fprintf(os.Stderr, "parse scenario: %v\n", err)
			os.Exit(1)
		}
	}

	if err := run(sc, cfg.Simulation, os.Stdout); err != nil {
		log.Error().Err(err).Msg("Pricing failed")
		os.Exit(1)
	}
}

// run prints the Black-76 reference followed by one Monte Carlo row per path count.
func run(sc scenario, sim option.SimulationConfig, w io.Writer) error {
	kind, err := option.ParseKind(sc.Kind)
	if err != nil {
		return err
	}
	if len(sc.Paths) == 0 {
		return utils.Invalidf("scenario: at least one path count is required")
	}
	sim = sc.Simulation.apply(sim)

	black, mc, err := pricers(sc, kind)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)

	start := time.Now()
	ref, err := black()
	if err != nil {
		return err
	}
	if err := enc.Encode(row{Method: "black76", Price: round(ref), ElapsedMS: elapsedMS(start)}); err != nil {
		return err
	}

	for _, n := range sc.Paths {
		start := time.Now()
		res, err := mc(n, sim)
		if err != nil {
			return fmt.Errorf("paths=%d: %w", n, err)
		}
		if err := enc.Encode(row{
			Method:         "monte_carlo",
			Paths:          n,
			Price:          round(res.Price),
			StandardError:  round(res.StandardError),
			CI95:           round(res.ConfidenceInterval95),
			EffectivePaths: res.EffectivePathCount,
			VRFactor:       round(res.VarianceReductionFactor),
			AbsError:       round(math.Abs(res.Price - ref)),
			ElapsedMS:      elapsedMS(start),
		}); err != nil {
			return err
		}
	}
	return nil
}

type blackFunc func() (float64, error)
type mcFunc func(paths int, cfg option.SimulationConfig) (option.SimulationResult, error)

func pricers(sc scenario, kind option.Kind) (blackFunc, mcFunc, error) {
	if sc.Curve == nil {
		black := func() (float64, error) {
			if err := utils.CheckFinite("scenario: forward", sc.Forward); err != nil {
				return 0, err
			}
			return option.Black76Price(sc.Forward, sc.Strike, sc.Expiry, sc.Volatility, sc.DiscountFactor, kind), nil
		}
		mc := func(paths int, cfg option.SimulationConfig) (option.SimulationResult, error) {
			return option.SimulateWithStats(sc.Forward, sc.Strike, sc.Volatility, sc.Expiry, sc.DiscountFactor, kind, paths, cfg)
		}
		return black, mc, nil
	}

	m := curve.Continuous
	if sc.Curve.Compounding != "" {
		var err error
		if m, err = curve.ParseCompounding(sc.Curve.Compounding); err != nil {
			return nil, nil, err
		}
	}
	crv, err := curve.NewFlatCurve(sc.Curve.Yield, m, utils.Act365F)
	if err != nil {
		return nil, nil, err
	}

	opt := options.NewEuropeanBondOption(kind, sc.Strike, sc.Expiry)
	if sc.Curve.BondTenor > 0 {
		opt.BondTenor = sc.Curve.BondTenor
	}
	black := func() (float64, error) {
		return opt.PriceBlack(crv, sc.Volatility)
	}
	mc := func(paths int, cfg option.SimulationConfig) (option.SimulationResult, error) {
		return opt.PriceMCWithStats(crv, sc.Volatility, paths, cfg)
	}
	return black, mc, nil
}

func (s simulationSet) apply(cfg option.SimulationConfig) option.SimulationConfig {
	if s.BatchSize != nil {
		cfg.BatchSize = *s.BatchSize
	}
	if s.Antithetic != nil {
		cfg.UseAntitheticVariates = *s.Antithetic
	}
	if s.Seed != nil {
		cfg.RandomSeed = *s.Seed
	}
	if s.Vectorize != nil {
		cfg.EnableBatchVectorization = *s.Vectorize
	}
	if s.Workers != nil {
		cfg.Workers = *s.Workers
	}
	return cfg
}

func parsePaths(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid path count %q: %w", part, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(outputDecimals).InexactFloat64()
}

func elapsedMS(start time.Time) float64 {
	return decimal.NewFromFloat(float64(time.Since(start).Microseconds()) / 1000.0).Round(3).InexactFloat64()
}
