package utils

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument marks any rejected input: non-finite numbers, non-positive
// sizes, malformed quotes. Callers test for it with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CheckFinite returns an ErrInvalidArgument-wrapping error when v is NaN or infinite.
func CheckFinite(name string, v float64) error {
	if !IsFinite(v) {
		return fmt.Errorf("%s must be finite, got %v: %w", name, v, ErrInvalidArgument)
	}
	return nil
}

// Invalidf formats a message and wraps ErrInvalidArgument.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidArgument)...)
}
