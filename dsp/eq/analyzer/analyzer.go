package analyzer

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/dsp/eq"
	"github.com/cwbudde/algo-eq/dsp/window"
)

var _ eq.BlockObserver = (*Analyzer)(nil)

const (
	// DefaultFFTSize is the frame length used when none is configured.
	DefaultFFTSize = 2048

	minFFTSize = 64
	maxFFTSize = 1 << 16

	// ringFrames is the ring capacity in FFT frames. The producer may run
	// this many frames minus one ahead of a reader before a copy tears.
	ringFrames = 4
)

var (
	// ErrInvalidFFTSize is returned for sizes that are not a power of two in
	// the supported range.
	ErrInvalidFFTSize = errors.New("analyzer: fft size must be a power of two in [64, 65536]")
	// ErrNotEnoughSamples is returned by Compute before one full frame has
	// been observed.
	ErrNotEnoughSamples = errors.New("analyzer: not enough samples observed")
	// ErrOverrun is returned by Compute when the producer overwrote the frame
	// while it was being copied. Retrying usually succeeds.
	ErrOverrun = errors.New("analyzer: frame overwritten during read")
)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWindow selects the analysis window. The default is Hann.
func WithWindow(t window.Type) Option {
	return func(a *Analyzer) {
		a.windowType = t
	}
}

// WithFloor sets the level reported for bins quieter than db. The default
// is core.MinusInfinityDB; lower it to see quantization noise.
func WithFloor(db float64) Option {
	return func(a *Analyzer) {
		if db < 0 && !math.IsInf(db, 0) {
			a.floor = db
		}
	}
}

// Analyzer is a single-producer spectrum analyzer. ObserveBlock belongs to
// one audio goroutine; Compute belongs to one reader goroutine.
type Analyzer struct {
	sampleRate float64
	size       int
	windowType window.Type
	floor      float64

	ring []atomic.Uint32
	mask uint64
	// reserved covers every slot the producer may be writing; write covers
	// the slots it has finished.
	reserved atomic.Uint64
	write    atomic.Uint64

	plan   *algofft.Plan[complex128]
	coeffs []float64
	frame  []float64
	bins   []complex128
	re, im []float64
	mag    []float64
	scale  float64
}

// New returns an analyzer with frames of fftSize samples at sampleRate.
func New(fftSize int, sampleRate float64, opts ...Option) (*Analyzer, error) {
	if fftSize < minFFTSize || fftSize > maxFFTSize || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFFTSize, fftSize)
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("analyzer: %w: %v", core.ErrInvalidSampleRate, sampleRate)
	}

	a := &Analyzer{
		sampleRate: sampleRate,
		size:       fftSize,
		windowType: window.TypeHann,
		floor:      core.MinusInfinityDB,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("analyzer: failed to create FFT plan: %w", err)
	}
	a.plan = plan

	a.coeffs = window.Generate(a.windowType, fftSize, window.WithPeriodic())
	gain, err := window.CoherentGain(a.coeffs)
	if err != nil {
		return nil, fmt.Errorf("analyzer: %w", err)
	}
	// A full-scale sine lands on 0 dB.
	a.scale = 2 / (float64(fftSize) * gain)

	capacity := ringFrames * fftSize
	a.ring = make([]atomic.Uint32, capacity)
	a.mask = uint64(capacity - 1)

	bins := fftSize/2 + 1
	a.frame = make([]float64, fftSize)
	a.bins = make([]complex128, fftSize)
	a.re = make([]float64, bins)
	a.im = make([]float64, bins)
	a.mag = make([]float64, bins)

	return a, nil
}

// ObserveBlock records the mono sum of channels. Channels shorter than the
// first one limit the frame count. It does not allocate or block.
func (a *Analyzer) ObserveBlock(channels [][]float32) {
	if len(channels) == 0 {
		return
	}

	frames := len(channels[0])
	for _, ch := range channels[1:] {
		frames = min(frames, len(ch))
	}
	if frames == 0 {
		return
	}

	norm := 1 / float32(len(channels))
	w := a.write.Load()
	a.reserved.Store(w + uint64(frames))
	for i := 0; i < frames; i++ {
		var sum float32
		for _, ch := range channels {
			sum += ch[i]
		}
		a.ring[(w+uint64(i))&a.mask].Store(math.Float32bits(sum * norm))
	}
	a.write.Store(w + uint64(frames))
}

// Observed returns the total number of frames recorded.
func (a *Analyzer) Observed() uint64 {
	return a.write.Load()
}

// Reset discards recorded samples. It must not run concurrently with
// ObserveBlock.
func (a *Analyzer) Reset() {
	a.write.Store(0)
	a.reserved.Store(0)
}

// FFTSize returns the frame length.
func (a *Analyzer) FFTSize() int {
	return a.size
}

// SampleRate returns the rate bin frequencies are derived from.
func (a *Analyzer) SampleRate() float64 {
	return a.sampleRate
}

// Compute fills dst with the spectrum of the newest frame. dst.DB is reused
// when large enough.
func (a *Analyzer) Compute(dst *Spectrum) error {
	end := a.write.Load()
	n := uint64(a.size)
	if end < n {
		return ErrNotEnoughSamples
	}

	start := end - n
	for i := range a.frame {
		a.frame[i] = float64(math.Float32frombits(a.ring[(start+uint64(i))&a.mask].Load()))
	}

	if a.reserved.Load()-start > uint64(len(a.ring)) {
		return ErrOverrun
	}

	vecmath.MulBlockInPlace(a.frame, a.coeffs)
	for i, v := range a.frame {
		a.bins[i] = complex(v, 0)
	}
	if err := a.plan.Forward(a.bins, a.bins); err != nil {
		return fmt.Errorf("analyzer: fft: %w", err)
	}

	for k := range a.re {
		a.re[k] = real(a.bins[k])
		a.im[k] = imag(a.bins[k])
	}
	vecmath.Magnitude(a.mag, a.re, a.im)

	bins := len(a.mag)
	if cap(dst.DB) < bins {
		dst.DB = make([]float64, bins)
	}
	dst.DB = dst.DB[:bins]
	for k, m := range a.mag {
		s := a.scale
		if k == 0 || k == bins-1 {
			s /= 2
		}
		dst.DB[k] = a.level(m * s)
	}

	dst.SampleRate = a.sampleRate
	dst.BinWidth = a.sampleRate / float64(a.size)
	dst.Window = a.windowType
	dst.Floor = a.floor

	return nil
}

func (a *Analyzer) level(gain float64) float64 {
	if !(gain > 0) {
		return a.floor
	}
	return math.Max(a.floor, 20*math.Log10(gain))
}
