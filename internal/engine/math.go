// Package engine implements the dynamic range compressor's signal-processing
// core: pre-delay buffers, the shaped-power detector, the attack/release
// envelope follower, and the per-division output compression.
package engine

import "math"

const (
	// negTwoDB is 10^(-2/20), the fast/slow release crossover used by the
	// detector's adaptive release branch.
	negTwoDB = 0.7943282347242815
)

// decibelsToLinear converts a dB value to a linear amplitude ratio.
func decibelsToLinear(db float64) float64 {
	// 10^(x/20) = e^(x * ln(10^(1/20)))
	return math.Exp(0.1151292546497022 * db)
}

// linearToDecibels converts a linear amplitude ratio to dB. Non-positive
// input returns -1000, a floor rather than an error.
func linearToDecibels(linear float64) float64 {
	if linear <= 0 {
		return -1000
	}
	// 20 * log10(x) = 20/ln(10) * ln(x)
	return 8.6858896380650366 * math.Log(linear)
}

// warpSin and warpAsin are mutual inverses on [-1,1], used to smooth the
// sharp exponential transitions in the gain trajectory.
func warpSin(x float64) float64 {
	return math.Sin(math.Pi / 2 * x)
}

func warpAsin(x float64) float64 {
	return math.Asin(x) * (2 / math.Pi)
}

// kneeExp is named for call-site locality with the knee curve formula;
// callers keep arguments negative to stay within float range.
func kneeExp(x float64) float64 {
	return math.Exp(x)
}

// minNormalFloat64 is DBL_MIN, the smallest positive normal float64.
// Magnitudes below this (but nonzero) are subnormal.
const minNormalFloat64 = 2.2250738585072014e-308

// isBad reports whether x is a gremlin: nonzero but not a normal finite
// float (NaN, subnormal, or infinite).
func isBad(x float64) bool {
	if x == 0 {
		return false
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return true
	}
	return math.Abs(x) < minNormalFloat64
}

// sanitize returns def if x is a gremlin (per isBad), else x unchanged.
// Used at the three documented points: detector average, attack
// compression_diff_db, release compression_diff_db. Do not extend its use
// beyond those — spurious sanitization can hide real bugs.
func sanitize(x, def float64) float64 {
	if isBad(x) {
		return def
	}
	return x
}
