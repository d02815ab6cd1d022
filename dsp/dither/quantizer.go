package dither

import (
	"math"
	"math/rand/v2"
)

// Quantizer maps float samples in [-1, 1) to integers of a fixed bit depth,
// using the same full scale as buffer.Planar: 1.0 is 2^(bits-1) steps.
// A Quantizer carries noise shaping state and serves one channel.
type Quantizer struct {
	bitDepth  int
	typ       Type
	amplitude float64
	shaping   Shaping

	scale  float64
	lo, hi float64

	shaper shaper
	rng    *rand.Rand
}

// NewQuantizer returns a quantizer. The default is 16-bit TPDF dither
// without noise shaping.
func NewQuantizer(opts ...Option) (*Quantizer, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return newQuantizer(cfg, 0), nil
}

// newQuantizer builds a quantizer whose noise comes from stream of the
// configured seed, so channels sharing a seed stay uncorrelated.
func newQuantizer(cfg config, stream uint64) *Quantizer {
	seed := cfg.seed
	if !cfg.seeded {
		seed = rand.Uint64()
		stream = rand.Uint64()
	}

	fs := math.Exp2(float64(cfg.bitDepth - 1))
	return &Quantizer{
		bitDepth:  cfg.bitDepth,
		typ:       cfg.typ,
		amplitude: cfg.amplitude,
		shaping:   cfg.shaping,
		scale:     fs,
		lo:        -fs,
		hi:        fs - 1,
		shaper:    newShaper(cfg.shaping),
		rng:       rand.New(rand.NewPCG(seed, stream)),
	}
}

// ProcessInteger quantizes x and returns the integer sample. Out-of-range
// input clips; NaN maps to zero.
func (q *Quantizer) ProcessInteger(x float64) int {
	if math.IsNaN(x) {
		x = 0
	}
	// Keeps infinities out of the shaper history.
	x = max(-2, min(2, x))

	shaped := q.shaper.shape(x * q.scale)

	v := math.Floor(shaped + q.noise() + 0.5)
	// Only rounding error feeds back; clipping error is dropped.
	q.shaper.record(v - shaped)
	return int(max(q.lo, min(q.hi, v)))
}

// ProcessSample quantizes x and returns it rescaled to float.
func (q *Quantizer) ProcessSample(x float64) float64 {
	return float64(q.ProcessInteger(x)) / q.scale
}

// ProcessInPlace quantizes buf in place.
func (q *Quantizer) ProcessInPlace(buf []float32) {
	for i, v := range buf {
		buf[i] = float32(q.ProcessSample(float64(v)))
	}
}

func (q *Quantizer) noise() float64 {
	switch q.typ {
	case TypeRectangular:
		return q.amplitude * (q.rng.Float64() - 0.5)
	case TypeTriangular:
		return q.amplitude * (q.rng.Float64() - q.rng.Float64())
	default:
		return 0
	}
}

// Reset clears the noise shaping history.
func (q *Quantizer) Reset() {
	q.shaper.reset()
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// Type returns the dither noise distribution.
func (q *Quantizer) Type() Type { return q.typ }

// Amplitude returns the dither noise scale in steps.
func (q *Quantizer) Amplitude() float64 { return q.amplitude }

// Shaping returns the noise shaping filter.
func (q *Quantizer) Shaping() Shaping { return q.shaping }
