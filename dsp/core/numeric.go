package core

import "math"

const defaultEpsilon = 1e-12

// MinusInfinityDB is the floor used when converting silent gains to decibels.
const MinusInfinityDB = -100.0

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps, using a relative
// comparison for large magnitudes.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// SnapToStep rounds value to the nearest multiple of step counted from start.
// A non-positive step leaves value unchanged, as does a value already on the
// grid up to rounding error.
func SnapToStep(value, start, step float64) float64 {
	if step <= 0 {
		return value
	}
	snapped := start + math.Round((value-start)/step)*step
	if math.Abs(snapped-value) <= 1e-9*step {
		return value
	}
	return snapped
}

// DBToGain converts decibels to linear amplitude (20*log10 convention).
// Values at or below MinusInfinityDB map to zero.
func DBToGain(db float64) float64 {
	if db <= MinusInfinityDB {
		return 0
	}
	return math.Pow(10, db/20)
}

// GainToDB converts linear amplitude to decibels, flooring at
// MinusInfinityDB for zero, negative and NaN gains.
func GainToDB(gain float64) float64 {
	if !(gain > 0) {
		return MinusInfinityDB
	}
	return math.Max(MinusInfinityDB, 20*math.Log10(gain))
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// IIR feedback paths decaying toward silence otherwise spend many cycles in
// subnormal arithmetic.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}
