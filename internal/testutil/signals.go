// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// Sample is a host or internal audio sample type.
type Sample interface {
	~float32 | ~float64
}

// DeterministicSine generates a deterministic float32 sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = float32(amplitude * math.Sin(step*float64(i)))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = float32((rng.Float64()*2 - 1) * amplitude)
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float32 {
	out := make([]float32, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// Clone returns a copy of s.
func Clone[T Sample](s []T) []T {
	return append([]T(nil), s...)
}

// Stereo returns two independent copies of s as a planar stereo block.
func Stereo(s []float32) [][]float32 {
	return [][]float32{Clone(s), Clone(s)}
}
