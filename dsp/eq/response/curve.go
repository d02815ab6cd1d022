package response

import (
	"math"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/dsp/eq"
	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
	"github.com/cwbudde/algo-vecmath"
)

const (
	// DefaultMinFreq is the lowest frequency of a default curve.
	DefaultMinFreq = 20.0
	// DefaultMaxFreq is the highest frequency of a default curve.
	DefaultMaxFreq = 20000.0
	// DefaultPoints is the resolution of a default curve.
	DefaultPoints = 512
)

// LogFrequencies returns n frequencies spaced logarithmically from lo to hi,
// both inclusive. It returns nil when the range is not positive and
// increasing.
func LogFrequencies(n int, lo, hi float64) []float64 {
	if n <= 0 || !(lo > 0) || !(hi > lo) || math.IsInf(hi, 0) {
		return nil
	}

	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}

	ratio := math.Log(hi / lo)
	for i := range out {
		out[i] = lo * math.Exp(ratio*float64(i)/float64(n-1))
	}
	out[n-1] = hi

	return out
}

// Curve is a composite magnitude response sampled on a fixed frequency grid.
type Curve struct {
	Frequencies  []float64
	Magnitudes   []float64
	MagnitudesDB []float64
	SampleRate   float64

	band []float64
}

// NewCurve allocates a curve with points log-spaced frequencies between lo
// and hi. Invalid arguments fall back to the defaults.
func NewCurve(points int, lo, hi float64) *Curve {
	if points < 2 {
		points = DefaultPoints
	}

	freqs := LogFrequencies(points, lo, hi)
	if freqs == nil {
		freqs = LogFrequencies(points, DefaultMinFreq, DefaultMaxFreq)
	}

	return &Curve{
		Frequencies:  freqs,
		Magnitudes:   make([]float64, points),
		MagnitudesDB: make([]float64, points),
		band:         make([]float64, points),
	}
}

// Len returns the number of grid points.
func (c *Curve) Len() int {
	return len(c.Frequencies)
}

// Compute evaluates chain at sampleRate. Bypassed bands and slots contribute
// unity gain. It does not allocate.
func (c *Curve) Compute(chain *eq.ChannelChain, sampleRate float64) {
	c.SampleRate = sampleRate
	for i := range c.Magnitudes {
		c.Magnitudes[i] = 1
	}

	if !chain.Bypassed(eq.PositionLowCut) {
		for i := 0; i < eq.MaxCutStages; i++ {
			c.multiply(chain.LowCut().Stage(i), sampleRate)
		}
	}
	if !chain.Bypassed(eq.PositionPeak) {
		c.multiply(chain.Peak(), sampleRate)
	}
	if !chain.Bypassed(eq.PositionHighCut) {
		for i := 0; i < eq.MaxCutStages; i++ {
			c.multiply(chain.HighCut().Stage(i), sampleRate)
		}
	}

	for i, m := range c.Magnitudes {
		c.MagnitudesDB[i] = core.GainToDB(m)
	}
}

func (c *Curve) multiply(s *biquad.Stage, sampleRate float64) {
	if s.Bypassed() {
		return
	}

	coeffs := s.Coefficients()
	for i, f := range c.Frequencies {
		c.band[i] = coeffs.Magnitude(f, sampleRate)
	}
	vecmath.MulBlockInPlace(c.Magnitudes, c.band)
}

// At returns the curve's dB value at freq, interpolated linearly over log
// frequency. Frequencies outside the grid clamp to the end points.
func (c *Curve) At(freq float64) float64 {
	n := len(c.Frequencies)
	if n == 0 {
		return 0
	}
	if freq <= c.Frequencies[0] {
		return c.MagnitudesDB[0]
	}
	if freq >= c.Frequencies[n-1] {
		return c.MagnitudesDB[n-1]
	}

	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if c.Frequencies[mid] <= freq {
			lo = mid
		} else {
			hi = mid
		}
	}

	f0, f1 := math.Log(c.Frequencies[lo]), math.Log(c.Frequencies[hi])
	t := (math.Log(freq) - f0) / (f1 - f0)

	return c.MagnitudesDB[lo] + t*(c.MagnitudesDB[hi]-c.MagnitudesDB[lo])
}

// Range returns the smallest and largest dB value of the curve.
func (c *Curve) Range() (minDB, maxDB float64) {
	if len(c.MagnitudesDB) == 0 {
		return 0, 0
	}

	minDB, maxDB = c.MagnitudesDB[0], c.MagnitudesDB[0]
	for _, v := range c.MagnitudesDB[1:] {
		minDB = min(minDB, v)
		maxDB = max(maxDB, v)
	}

	return minDB, maxDB
}

// Clone returns a deep copy of c.
func (c *Curve) Clone() *Curve {
	return &Curve{
		Frequencies:  append([]float64(nil), c.Frequencies...),
		Magnitudes:   append([]float64(nil), c.Magnitudes...),
		MagnitudesDB: append([]float64(nil), c.MagnitudesDB...),
		SampleRate:   c.SampleRate,
		band:         make([]float64, len(c.band)),
	}
}
