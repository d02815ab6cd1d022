package eq

import (
	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
	"github.com/cwbudde/algo-eq/dsp/filter/design"
)

// MakePeakFilter designs the peaking band of s. The gain is applied as the
// linear amplitude 10^(PeakGainDB/20) at PeakFreq, so the cookbook A term is
// its square root.
func MakePeakFilter(s Settings, sampleRate float64) biquad.Coefficients {
	return design.Peak(s.PeakFreq, s.PeakGainDB, s.PeakQuality, sampleRate)
}

// MakeLowCutFilter designs the low cut of s: a Butterworth high-pass of
// order 2*(slope+1) split into slope+1 biquads.
func MakeLowCutFilter(s Settings, sampleRate float64) []biquad.Coefficients {
	return AppendLowCutFilter(make([]biquad.Coefficients, 0, MaxCutStages), s, sampleRate)
}

// MakeHighCutFilter designs the high cut of s: a Butterworth low-pass of
// order 2*(slope+1) split into slope+1 biquads.
func MakeHighCutFilter(s Settings, sampleRate float64) []biquad.Coefficients {
	return AppendHighCutFilter(make([]biquad.Coefficients, 0, MaxCutStages), s, sampleRate)
}

// AppendLowCutFilter appends the low cut sections of s to dst.
func AppendLowCutFilter(dst []biquad.Coefficients, s Settings, sampleRate float64) []biquad.Coefficients {
	return design.AppendButterworthHP(dst, s.LowCutFreq, s.LowCutSlope.Order(), sampleRate)
}

// AppendHighCutFilter appends the high cut sections of s to dst.
func AppendHighCutFilter(dst []biquad.Coefficients, s Settings, sampleRate float64) []biquad.Coefficients {
	return design.AppendButterworthLP(dst, s.HighCutFreq, s.HighCutSlope.Order(), sampleRate)
}

// ChainCoefficients is every coefficient and bypass flag a ChannelChain needs
// for one block. It is computed once and installed into each channel.
type ChainCoefficients struct {
	LowCut        [MaxCutStages]biquad.Coefficients
	LowCutStages  int
	Peak          biquad.Coefficients
	HighCut       [MaxCutStages]biquad.Coefficients
	HighCutStages int

	LowCutBypassed  bool
	PeakBypassed    bool
	HighCutBypassed bool
}

// Compute fills cc from s at sampleRate. It does not allocate.
func (cc *ChainCoefficients) Compute(s Settings, sampleRate float64) {
	s = s.ForSampleRate(sampleRate)

	cc.LowCutStages = len(AppendLowCutFilter(cc.LowCut[:0], s, sampleRate))
	cc.Peak = MakePeakFilter(s, sampleRate)
	cc.HighCutStages = len(AppendHighCutFilter(cc.HighCut[:0], s, sampleRate))

	cc.LowCutBypassed = s.LowCutBypassed
	cc.PeakBypassed = s.PeakBypassed
	cc.HighCutBypassed = s.HighCutBypassed
}

// LowCutSections returns the active low cut sections.
func (cc *ChainCoefficients) LowCutSections() []biquad.Coefficients {
	return cc.LowCut[:cc.LowCutStages]
}

// HighCutSections returns the active high cut sections.
func (cc *ChainCoefficients) HighCutSections() []biquad.Coefficients {
	return cc.HighCut[:cc.HighCutStages]
}
