package analyzer

import (
	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/dsp/window"
)

// Spectrum is a one-sided magnitude spectrum in dBFS. Bin k sits at
// k*BinWidth Hz.
type Spectrum struct {
	SampleRate float64
	BinWidth   float64
	Window     window.Type
	// Floor is the level of silent bins. Zero means core.MinusInfinityDB.
	Floor float64
	DB    []float64
}

func (s *Spectrum) floor() float64 {
	if s.Floor < 0 {
		return s.Floor
	}
	return core.MinusInfinityDB
}

// Len returns the bin count.
func (s *Spectrum) Len() int {
	return len(s.DB)
}

// Frequency returns the centre frequency of bin k.
func (s *Spectrum) Frequency(k int) float64 {
	return float64(k) * s.BinWidth
}

// Bin returns the index of the bin closest to freq, clamped to the
// spectrum.
func (s *Spectrum) Bin(freq float64) int {
	if len(s.DB) == 0 || !(s.BinWidth > 0) {
		return 0
	}

	k := int(freq/s.BinWidth + 0.5)
	return max(0, min(k, len(s.DB)-1))
}

// At returns the level of the bin closest to freq, or the floor for an
// empty spectrum.
func (s *Spectrum) At(freq float64) float64 {
	if len(s.DB) == 0 {
		return s.floor()
	}
	return s.DB[s.Bin(freq)]
}

// Peak returns the loudest bin, skipping DC.
func (s *Spectrum) Peak() (bin int, db float64) {
	db = s.floor()
	for k := 1; k < len(s.DB); k++ {
		if s.DB[k] > db {
			bin, db = k, s.DB[k]
		}
	}
	return bin, db
}

// BandLevel returns the loudest bin level between lo and hi Hz inclusive.
func (s *Spectrum) BandLevel(lo, hi float64) float64 {
	level := s.floor()
	for k := s.Bin(lo); k <= s.Bin(hi) && k < len(s.DB); k++ {
		level = max(level, s.DB[k])
	}
	return level
}
