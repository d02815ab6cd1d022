package window

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownType is returned by ParseType for names no window carries.
var ErrUnknownType = errors.New("window: unknown type")

var (
	errEmptyCoeffs      = errors.New("window: coefficients must not be empty")
	errZeroCoherentGain = errors.New("window: coherent gain is zero")
	errMismatchedLength = errors.New("window: samples and coefficients differ in length")
)

func validateLength(size int) error {
	if size <= 0 {
		return fmt.Errorf("window: size %d must be positive", size)
	}
	return nil
}

func unknownTypeError(name string) error {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.String())
	}
	return fmt.Errorf("%w %q (one of %s)", ErrUnknownType, name, strings.Join(names, ", "))
}
