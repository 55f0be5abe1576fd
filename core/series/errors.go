package series

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyInput means there is nothing to chart. Callers render a "no data" state.
	ErrEmptyInput = errors.New("no data")
	// ErrDegenerateRange is reported when every sample has the same value (max == min).
	// Geometry recovers from it locally, it never reaches a view.
	ErrDegenerateRange = errors.New("degenerate range")
	// ErrDivideByZero is returned for a zero baseline or a zero progress target.
	ErrDivideByZero = errors.New("division by zero")
	// ErrInvalidConfiguration is returned for non-finite samples and out of range options.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// InvalidConfigError names the field that failed validation.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func NewInvalidConfigError(field, reason string) error {
	return &InvalidConfigError{Field: field, Reason: reason}
}

func (err *InvalidConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfiguration, err.Field, err.Reason)
}

func (err *InvalidConfigError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// IsNoData reports whether err means the chart has nothing to show.
func IsNoData(err error) bool {
	return errors.Is(err, ErrEmptyInput)
}
