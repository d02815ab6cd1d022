package eq

import (
	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
)

// ChannelChain is the per-channel filter cascade LowCut -> Peak -> HighCut.
//
// Processing methods belong to one audio goroutine. Install, Update and
// SetBypassed only publish values and may be called from elsewhere, but the
// Processor calls them itself at block boundaries.
type ChannelChain struct {
	lowCut  CutBank
	peak    biquad.Stage
	highCut CutBank

	sampleRate   float64
	maxBlockSize int
	ready        bool

	pending ChainCoefficients
}

// NewChannelChain returns a chain with every stage set to passthrough.
// It must be prepared before processing.
func NewChannelChain() *ChannelChain {
	c := &ChannelChain{}
	c.lowCut.init()
	c.peak.Init(biquad.Identity())
	c.highCut.init()
	return c
}

// Prepare clears all delay state for a new stream at sampleRate.
func (c *ChannelChain) Prepare(sampleRate float64, maxBlockSize int) {
	c.lowCut.Reset()
	c.peak.Reset()
	c.highCut.Reset()
	c.sampleRate = sampleRate
	c.maxBlockSize = maxBlockSize
	c.ready = true
}

// Ready reports whether Prepare has been called.
func (c *ChannelChain) Ready() bool { return c.ready }

// SampleRate returns the rate passed to the last Prepare.
func (c *ChannelChain) SampleRate() float64 { return c.sampleRate }

// MaxBlockSize returns the block size passed to the last Prepare.
func (c *ChannelChain) MaxBlockSize() int { return c.maxBlockSize }

// LowCut returns the low cut bank.
func (c *ChannelChain) LowCut() *CutBank { return &c.lowCut }

// Peak returns the peaking stage.
func (c *ChannelChain) Peak() *biquad.Stage { return &c.peak }

// HighCut returns the high cut bank.
func (c *ChannelChain) HighCut() *CutBank { return &c.highCut }

// SetBypassed toggles passthrough for one band.
func (c *ChannelChain) SetBypassed(pos ChainPosition, bypassed bool) {
	switch pos {
	case PositionLowCut:
		c.lowCut.SetBypassed(bypassed)
	case PositionPeak:
		c.peak.SetBypassed(bypassed)
	case PositionHighCut:
		c.highCut.SetBypassed(bypassed)
	}
}

// Bypassed reports the bypass state of one band.
func (c *ChannelChain) Bypassed(pos ChainPosition) bool {
	switch pos {
	case PositionLowCut:
		return c.lowCut.Bypassed()
	case PositionPeak:
		return c.peak.Bypassed()
	case PositionHighCut:
		return c.highCut.Bypassed()
	default:
		return false
	}
}

// Install publishes cc into every band.
func (c *ChannelChain) Install(cc *ChainCoefficients) {
	c.lowCut.Update(cc.LowCutSections())
	c.peak.ReplaceCoefficients(cc.Peak)
	c.highCut.Update(cc.HighCutSections())

	c.lowCut.SetBypassed(cc.LowCutBypassed)
	c.peak.SetBypassed(cc.PeakBypassed)
	c.highCut.SetBypassed(cc.HighCutBypassed)
}

// Update recomputes every band from s and installs the result.
func (c *ChannelChain) Update(s Settings, sampleRate float64) {
	c.pending.Compute(s, sampleRate)
	c.Install(&c.pending)
}

// ProcessSample runs one sample through the chain.
func (c *ChannelChain) ProcessSample(x float64) float64 {
	x = c.lowCut.ProcessSample(x)
	x = c.peak.ProcessSample(x)
	return c.highCut.ProcessSample(x)
}

// ProcessBlock filters buf in-place through the chain.
func (c *ChannelChain) ProcessBlock(buf []float32) {
	c.lowCut.ProcessBlock(buf)
	c.peak.ProcessBlock(buf)
	c.highCut.ProcessBlock(buf)
}

// Reset clears the delay lines without touching coefficients.
func (c *ChannelChain) Reset() {
	c.lowCut.Reset()
	c.peak.Reset()
	c.highCut.Reset()
}

// Magnitude returns the composite |H(f)| of the published coefficients.
func (c *ChannelChain) Magnitude(freqHz, sampleRate float64) float64 {
	return c.lowCut.Magnitude(freqHz, sampleRate) *
		c.peak.Magnitude(freqHz, sampleRate) *
		c.highCut.Magnitude(freqHz, sampleRate)
}
