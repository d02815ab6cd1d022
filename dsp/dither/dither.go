// Package dither requantizes float audio to integer PCM. Dither noise
// decorrelates the rounding error from the signal, and optional error
// feedback pushes the remaining noise towards high frequencies.
package dither

import (
	"fmt"
	"strings"
)

// Type selects the probability distribution of the dither noise.
type Type int

const (
	// TypeNone rounds without noise.
	TypeNone Type = iota
	// TypeRectangular adds uniform noise of one step peak to peak.
	TypeRectangular
	// TypeTriangular adds TPDF noise spanning two steps, the usual choice
	// for final output.
	TypeTriangular

	typeCount
)

var typeNames = [typeCount]string{"none", "rectangular", "triangular"}

func (t Type) String() string {
	if t.Valid() {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is a known dither type.
func (t Type) Valid() bool {
	return t >= 0 && t < typeCount
}

// ParseType accepts a name as returned by String, or "rpdf"/"tpdf".
func ParseType(name string) (Type, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "rpdf":
		return TypeRectangular, nil
	case "tpdf":
		return TypeTriangular, nil
	default:
		for t, tn := range typeNames {
			if n == tn {
				return Type(t), nil
			}
		}
	}
	return TypeNone, fmt.Errorf("dither: unknown type %q", name)
}
