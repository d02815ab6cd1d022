package eq

import (
	"fmt"
	"strconv"
	"strings"
)

// Slope selects the steepness of a cut band. Each step adds one second-order
// Butterworth section (12 dB/oct).
type Slope int

const (
	Slope12 Slope = iota
	Slope24
	Slope36
	Slope48
)

// MaxCutStages is the number of biquad slots in a cut band.
const MaxCutStages = int(Slope48) + 1

// Valid reports whether s is one of the defined slopes.
func (s Slope) Valid() bool {
	return s >= Slope12 && s <= Slope48
}

func (s Slope) clamped() Slope {
	switch {
	case s < Slope12:
		return Slope12
	case s > Slope48:
		return Slope48
	default:
		return s
	}
}

// Stages returns the number of cascaded biquads for s.
func (s Slope) Stages() int {
	return int(s.clamped()) + 1
}

// Order returns the Butterworth filter order for s.
func (s Slope) Order() int {
	return 2 * s.Stages()
}

// DBPerOctave returns the asymptotic rolloff of s.
func (s Slope) DBPerOctave() int {
	return 6 * s.Order()
}

func (s Slope) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Slope(%d)", int(s))
	}
	return fmt.Sprintf("%d dB/Oct", s.DBPerOctave())
}

// ParseSlope accepts a choice index ("0".."3"), a rolloff in dB ("12".."48")
// or a label as returned by String.
func ParseSlope(v string) (Slope, error) {
	t := strings.TrimSpace(strings.ToLower(v))
	t = strings.TrimSuffix(t, "db/oct")
	t = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "db"))

	n, err := strconv.Atoi(t)
	if err != nil {
		return 0, fmt.Errorf("eq: invalid slope %q", v)
	}

	switch {
	case n >= int(Slope12) && n <= int(Slope48):
		return Slope(n), nil
	case n%12 == 0 && n >= 12 && n <= 48:
		return Slope(n/12 - 1), nil
	default:
		return 0, fmt.Errorf("eq: invalid slope %q", v)
	}
}

// ChainPosition identifies a band inside a ChannelChain.
type ChainPosition int

const (
	PositionLowCut ChainPosition = iota
	PositionPeak
	PositionHighCut
)

func (p ChainPosition) String() string {
	switch p {
	case PositionLowCut:
		return "LowCut"
	case PositionPeak:
		return "Peak"
	case PositionHighCut:
		return "HighCut"
	default:
		return fmt.Sprintf("ChainPosition(%d)", int(p))
	}
}

// Settings is a consistent snapshot of every equalizer parameter.
type Settings struct {
	LowCutFreq   float64
	HighCutFreq  float64
	PeakFreq     float64
	PeakGainDB   float64
	PeakQuality  float64
	LowCutSlope  Slope
	HighCutSlope Slope

	LowCutBypassed  bool
	PeakBypassed    bool
	HighCutBypassed bool
}

// DefaultSettings returns the parameter defaults: cut bands fully open,
// a flat peak at 750 Hz.
func DefaultSettings() Settings {
	return Settings{
		LowCutFreq:   20,
		HighCutFreq:  20000,
		PeakFreq:     750,
		PeakGainDB:   0,
		PeakQuality:  1,
		LowCutSlope:  Slope12,
		HighCutSlope: Slope12,
	}
}

// maxFreqRatio keeps designed frequencies strictly below Nyquist.
const maxFreqRatio = 0.49

// ForSampleRate returns s with every frequency limited to what sampleRate
// can represent and slopes forced into range. A 20 kHz high cut at 32 kHz
// becomes a 15.68 kHz one instead of silence.
func (s Settings) ForSampleRate(sampleRate float64) Settings {
	limit := func(f float64) float64 {
		maxFreq := sampleRate * maxFreqRatio
		if f > maxFreq {
			return maxFreq
		}
		if f < 1 {
			return 1
		}
		return f
	}

	s.LowCutFreq = limit(s.LowCutFreq)
	s.HighCutFreq = limit(s.HighCutFreq)
	s.PeakFreq = limit(s.PeakFreq)
	s.LowCutSlope = s.LowCutSlope.clamped()
	s.HighCutSlope = s.HighCutSlope.clamped()
	return s
}

// Bypassed reports the bypass flag of the band at pos.
func (s Settings) Bypassed(pos ChainPosition) bool {
	switch pos {
	case PositionLowCut:
		return s.LowCutBypassed
	case PositionPeak:
		return s.PeakBypassed
	case PositionHighCut:
		return s.HighCutBypassed
	default:
		return false
	}
}
