package design

import (
	"math"

	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
)

// ButterworthLP designs a lowpass Butterworth cascade of the given order.
// Sections are ordered from the lowest to the highest Q.
//
// For odd orders, the final section is first-order (B2=A2=0).
func ButterworthLP(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	return AppendButterworthLP(nil, freq, order, sampleRate)
}

// ButterworthHP designs a highpass Butterworth cascade of the given order.
//
// For odd orders, the final section is first-order (B2=A2=0).
func ButterworthHP(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	return AppendButterworthHP(nil, freq, order, sampleRate)
}

// AppendButterworthLP is ButterworthLP appending into dst. With enough
// capacity in dst it does not allocate.
func AppendButterworthLP(dst []biquad.Coefficients, freq float64, order int, sampleRate float64) []biquad.Coefficients {
	if order <= 0 {
		return dst
	}

	for i := order/2 - 1; i >= 0; i-- {
		dst = append(dst, Lowpass(freq, butterworthQ(order, i), sampleRate))
	}
	if order%2 != 0 {
		dst = append(dst, butterworthFirstOrderLP(freq, sampleRate))
	}
	return dst
}

// AppendButterworthHP is ButterworthHP appending into dst.
func AppendButterworthHP(dst []biquad.Coefficients, freq float64, order int, sampleRate float64) []biquad.Coefficients {
	if order <= 0 {
		return dst
	}

	for i := order/2 - 1; i >= 0; i-- {
		dst = append(dst, Highpass(freq, butterworthQ(order, i), sampleRate))
	}
	if order%2 != 0 {
		dst = append(dst, butterworthFirstOrderHP(freq, sampleRate))
	}
	return dst
}

// ButterworthQ returns the quality factor of section index of an order-N
// Butterworth prototype: 1 / (2 sin((2i+1)pi / 2N)).
func ButterworthQ(order, index int) float64 {
	return butterworthQ(order, index)
}

func butterworthQ(order, index int) float64 {
	if order <= 0 {
		return defaultQ
	}
	theta := math.Pi * float64(2*index+1) / (2 * float64(order))
	s := math.Sin(theta)
	if s == 0 {
		return defaultQ
	}
	return 1 / (2 * s)
}

func butterworthFirstOrderLP(freq, sampleRate float64) biquad.Coefficients {
	if _, ok := normalizedW0(freq, sampleRate); !ok {
		return biquad.Coefficients{}
	}
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)
	return biquad.Coefficients{
		B0: k * norm,
		B1: k * norm,
		A1: (k - 1) * norm,
	}
}

func butterworthFirstOrderHP(freq, sampleRate float64) biquad.Coefficients {
	if _, ok := normalizedW0(freq, sampleRate); !ok {
		return biquad.Coefficients{}
	}
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)
	return biquad.Coefficients{
		B0: norm,
		B1: -norm,
		A1: (k - 1) * norm,
	}
}
