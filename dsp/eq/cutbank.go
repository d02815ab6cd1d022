package eq

import (
	"sync/atomic"

	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
)

// CutBank is a cascade of up to MaxCutStages biquads realizing a cut band.
// Slots beyond the active slope are bypassed, so changing the slope never
// reallocates.
type CutBank struct {
	stages   [MaxCutStages]biquad.Stage
	bypassed atomic.Bool
}

func (b *CutBank) init() {
	for i := range b.stages {
		b.stages[i].Init(biquad.Identity())
	}
}

// Update installs coeffs[i] into slot i and enables it; remaining slots are
// bypassed. Extra sections beyond MaxCutStages are ignored.
func (b *CutBank) Update(coeffs []biquad.Coefficients) {
	for i := range b.stages {
		if i < len(coeffs) {
			b.stages[i].ReplaceCoefficients(coeffs[i])
			b.stages[i].SetBypassed(false)
			continue
		}
		b.stages[i].SetBypassed(true)
	}
}

// SetBypassed bypasses the whole bank regardless of per-slot state.
func (b *CutBank) SetBypassed(bypassed bool) {
	b.bypassed.Store(bypassed)
}

// Bypassed reports whether the whole bank is bypassed.
func (b *CutBank) Bypassed() bool {
	return b.bypassed.Load()
}

// ActiveStages returns the number of enabled slots.
func (b *CutBank) ActiveStages() int {
	n := 0
	for i := range b.stages {
		if !b.stages[i].Bypassed() {
			n++
		}
	}
	return n
}

// Stage returns slot i.
func (b *CutBank) Stage(i int) *biquad.Stage {
	return &b.stages[i]
}

// ProcessSample runs x through every enabled slot in order.
func (b *CutBank) ProcessSample(x float64) float64 {
	if b.bypassed.Load() {
		return x
	}
	for i := range b.stages {
		x = b.stages[i].ProcessSample(x)
	}
	return x
}

// ProcessBlock filters buf in-place through every enabled slot.
func (b *CutBank) ProcessBlock(buf []float32) {
	if b.bypassed.Load() {
		return
	}
	for i := range b.stages {
		b.stages[i].ProcessBlock(buf)
	}
}

// Reset clears the delay lines of every slot.
func (b *CutBank) Reset() {
	for i := range b.stages {
		b.stages[i].Reset()
	}
}

// Magnitude returns the bank's |H(f)| from its published coefficients.
func (b *CutBank) Magnitude(freqHz, sampleRate float64) float64 {
	if b.bypassed.Load() {
		return 1
	}
	m := 1.0
	for i := range b.stages {
		m *= b.stages[i].Magnitude(freqHz, sampleRate)
	}
	return m
}
