package gas

import (
	"errors"
	"fmt"
)

// Domain errors for engine configuration.
var (
	// ErrInvalidParam indicates a parameter failed range validation.
	ErrInvalidParam = errors.New("gas: invalid parameter")

	// ErrInfeasiblePacking indicates the radius is too large for the
	// grid placement to produce a non-overlapping configuration.
	ErrInfeasiblePacking = errors.New("gas: packing infeasible for grid placement")
)

// ConfigurationError names the offending field of a rejected Params.
type ConfigurationError struct {
	Field   string
	Value   float64
	Reason  string
	Wrapped error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s=%g (%s)", e.Wrapped, e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Wrapped
}

func invalidParam(field string, value float64, reason string) error {
	return &ConfigurationError{Field: field, Value: value, Reason: reason, Wrapped: ErrInvalidParam}
}
