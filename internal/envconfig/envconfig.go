// Package envconfig loads command line tool settings from the environment and an
// optional .env file.
package envconfig

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/meenmo/ratelib/bond/config"
	"github.com/meenmo/ratelib/logger"
	"github.com/meenmo/ratelib/option"
)

// Config holds the settings shared by the CLIs.
type Config struct {
	Log        logger.Config
	Simulation option.SimulationConfig
	Solver     config.Config
}

// Load reads configuration from environment variables. An empty envFile loads
// ./.env when present; a named file must exist.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFile); err != nil {
		return nil, fmt.Errorf("envconfig: load %s: %w", envFile, err)
	}

	sim := option.DefaultSimulationConfig()
	solver := config.DefaultConfig

	cfg := &Config{
		Log: logger.Config{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvAsBool("LOG_PRETTY", false),
		},
		Simulation: option.SimulationConfig{
			BatchSize:                getEnvAsInt("MC_BATCH_SIZE", sim.BatchSize),
			UseAntitheticVariates:    getEnvAsBool("MC_ANTITHETIC", sim.UseAntitheticVariates),
			RandomSeed:               getEnvAsInt64("MC_SEED", sim.RandomSeed),
			EnableBatchVectorization: getEnvAsBool("MC_VECTORIZE", sim.EnableBatchVectorization),
			Workers:                  getEnvAsInt("MC_WORKERS", sim.Workers),
		},
		Solver: solver,
	}
	cfg.Solver.BisectionIterations = getEnvAsInt("SOLVER_BISECTION_ITERATIONS", solver.BisectionIterations)
	cfg.Solver.YieldFloor = getEnvAsFloat("SOLVER_YIELD_FLOOR", solver.YieldFloor)
	cfg.Solver.YieldCeiling = getEnvAsFloat("SOLVER_YIELD_CEILING", solver.YieldCeiling)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the ranges the pricing packages would otherwise reject per call.
func (c *Config) Validate() error {
	if c.Simulation.BatchSize <= 0 {
		return fmt.Errorf("MC_BATCH_SIZE must be positive, got %d", c.Simulation.BatchSize)
	}
	if c.Simulation.Workers < 0 {
		return fmt.Errorf("MC_WORKERS must not be negative, got %d", c.Simulation.Workers)
	}
	if c.Solver.BisectionIterations < 0 {
		return fmt.Errorf("SOLVER_BISECTION_ITERATIONS must not be negative, got %d", c.Solver.BisectionIterations)
	}
	if !(c.Solver.YieldFloor < c.Solver.YieldCeiling) {
		return fmt.Errorf("SOLVER_YIELD_FLOOR (%g) must be below SOLVER_YIELD_CEILING (%g)", c.Solver.YieldFloor, c.Solver.YieldCeiling)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
