package dither

import (
	"fmt"
	"strings"
)

// Shaping selects an error-feedback noise shaping filter.
type Shaping int

const (
	ShapingNone Shaping = iota
	ShapingEFB          // first order error feedback
	Shaping2SC          // second order highpass
	Shaping3FC          // F-weighted, third order
	Shaping9FC          // F-weighted, ninth order

	shapingCount
)

var shapingNames = [shapingCount]string{"none", "efb", "2sc", "3fc", "9fc"}

var shapingCoeffs = [shapingCount][]float64{
	ShapingNone: nil,
	ShapingEFB:  {1},
	Shaping2SC:  {1.0, -0.5},
	Shaping3FC:  {1.623, -0.982, 0.109},
	Shaping9FC:  {2.412, -3.370, 3.937, -4.174, 3.353, -2.205, 1.281, -0.569, 0.0847},
}

// maxShapingOrder is the longest coefficient set.
const maxShapingOrder = 9

func (s Shaping) String() string {
	if s.Valid() {
		return shapingNames[s]
	}
	return fmt.Sprintf("Shaping(%d)", int(s))
}

// Valid reports whether s is a known shaping filter.
func (s Shaping) Valid() bool {
	return s >= 0 && s < shapingCount
}

// ParseShaping accepts a name as returned by String.
func ParseShaping(name string) (Shaping, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for s, sn := range shapingNames {
		if n == sn {
			return Shaping(s), nil
		}
	}
	return ShapingNone, fmt.Errorf("dither: unknown noise shaping %q", name)
}

// shaper subtracts weighted past quantization errors from the input. The
// history is a fixed ring so shaping never allocates.
type shaper struct {
	coeffs  []float64
	history [maxShapingOrder]float64
	pos     int
}

func newShaper(s Shaping) shaper {
	return shaper{coeffs: shapingCoeffs[s]}
}

// shape returns x minus the filtered error history. record must follow.
func (s *shaper) shape(x float64) float64 {
	order := len(s.coeffs)
	if order == 0 {
		return x
	}
	for i, c := range s.coeffs {
		x -= c * s.history[(order+s.pos-i)%order]
	}
	s.pos = (s.pos + 1) % order
	return x
}

// record stores the error of the sample last passed to shape.
func (s *shaper) record(err float64) {
	if len(s.coeffs) == 0 {
		return
	}
	s.history[s.pos] = err
}

func (s *shaper) reset() {
	s.history = [maxShapingOrder]float64{}
	s.pos = 0
}
