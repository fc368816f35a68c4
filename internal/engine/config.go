package engine

import (
	"fmt"
	"math"
)

// Params holds the compressor coefficients that are immutable for the
// duration of a division. Fields are stored in the Q-format the spec
// assigns them so persisted/transported blobs match §3.2 exactly; all
// per-division math converts to float64 at the point of use.
type Params struct {
	Enabled bool

	// PreDelayTime is the requested look-ahead, in seconds.
	PreDelayTime float64

	LinearThreshold Q // Q30
	KneeThreshold   Q // Q24
	KneeAlpha       Q // Q24
	KneeBeta        Q // Q24
	K               Q // Q20
	RatioBase       Q // Q30
	Slope           Q // Q30
	MasterLinearGain Q // Q24

	AttackFrames             Q // Q20
	SatReleaseFramesInvNeg   Q // Q30
	SatReleaseRateAtNegTwoDB Q // Q30

	KA, KB, KC, KD, KE Q // Q12, release-curve polynomial coefficients
}

// Knobs is the human-facing control surface for a compressor
// configuration: plain units (dB, seconds, ratio) rather than Q-format.
// Compile converts a Knobs into a Params, deriving the knee and release
// coefficients the detector/envelope need.
type Knobs struct {
	Enabled bool

	ThresholdDB float64 // linear_threshold, in dB
	KneeWidthDB float64 // knee setting, >= 0; knee_threshold is KneeWidthDB/2 above ThresholdDB
	Ratio       float64 // post-knee compression ratio, > 1
	AttackSec   float64 // attack time, > 0
	MakeupGainDB float64

	PreDelaySec float64

	// ReleaseCurve controls the adaptive release polynomial. Zero value
	// selects DefaultReleaseCurve.
	ReleaseCurve [5]float64 // kA..kE, frames
}

// DefaultReleaseCurve is the adaptive release polynomial used when a
// Knobs value leaves ReleaseCurve unset. Coefficients are frame counts;
// in compression (x near 0) release is fast, in light compression (x
// near 3) release relaxes — this is "more compression -> faster release"
// from §4.4.
var DefaultReleaseCurve = [5]float64{3.0, 9.0, 1.0, -1.0, 2.0}

// DefaultKnobs returns a moderate compressor configuration: -20dB
// threshold, 4:1 ratio, 2dB soft knee, 5ms attack, no makeup gain, no
// pre-delay.
func DefaultKnobs() Knobs {
	return Knobs{
		Enabled:      true,
		ThresholdDB:  -20,
		KneeWidthDB:  2,
		Ratio:        4,
		AttackSec:    0.005,
		MakeupGainDB: 0,
		PreDelaySec:  0,
		ReleaseCurve: DefaultReleaseCurve,
	}
}

// Compile derives a Params from human-facing Knobs, validating the
// invariants from §3.2: linear_threshold <= knee_threshold, slope in
// (0,1), attack_frames > 0, release rates in (0,1).
func Compile(k Knobs, sampleRate float64) (Params, error) {
	if k.Ratio <= 1 {
		return Params{}, fmt.Errorf("engine: ratio must be > 1, got %v", k.Ratio)
	}
	if k.KneeWidthDB < 0 {
		return Params{}, fmt.Errorf("engine: knee width must be >= 0, got %v", k.KneeWidthDB)
	}
	if k.AttackSec <= 0 {
		return Params{}, fmt.Errorf("engine: attack time must be > 0, got %v", k.AttackSec)
	}
	if sampleRate <= 0 {
		return Params{}, fmt.Errorf("engine: sample rate must be > 0, got %v", sampleRate)
	}

	linearThreshold := decibelsToLinear(k.ThresholdDB)
	kneeThreshold := decibelsToLinear(k.ThresholdDB + k.KneeWidthDB/2)
	slope := 1.0 / k.Ratio

	// Knee curve: knee_alpha + knee_beta*exp(-K*x), matched in value and
	// first derivative to the linear segment at linear_threshold and to
	// the ratio segment at knee_threshold (see §4.3/drc_generic.c
	// knee_curveK derivation).
	kVal := computeKneeK(linearThreshold, kneeThreshold, slope)
	kneeAlpha := linearThreshold + 1/kVal
	kneeBeta := -math.Exp(kVal*linearThreshold) / kVal

	// ratio_base chosen so the ratio-segment curve passes through
	// (knee_threshold, knee_curveK(knee_threshold)) with slope "slope".
	y0 := kneeAlpha + kneeBeta*math.Exp(-kVal*kneeThreshold)
	ratioBase := y0 * math.Pow(kneeThreshold, -slope)

	attackFrames := k.AttackSec * sampleRate / DivisionFrames
	if attackFrames <= 0 {
		attackFrames = 1
	}

	releaseCurve := k.ReleaseCurve
	if releaseCurve == ([5]float64{}) {
		releaseCurve = DefaultReleaseCurve
	}

	// Detector release shaping: sat_release_frames_inv_neg scales a dB
	// delta into a per-frame exponential rate, and
	// sat_release_rate_at_neg_two_db is the per-frame rate used above the
	// -2dB crossover in §4.3. Both derive from a fixed satReleaseFrames
	// that does not scale with the sample rate.
	const satReleaseFrames = 1.75 * 1 // frames
	satReleaseFramesInvNeg := -1.0 / satReleaseFrames
	satReleaseRateAtNegTwoDB := 1 - math.Pow(negTwoDB, 1/satReleaseFrames)

	p := Params{
		Enabled:                  k.Enabled,
		PreDelayTime:             k.PreDelaySec,
		LinearThreshold:          floatToQ(linearThreshold, 30),
		KneeThreshold:            floatToQ(kneeThreshold, 24),
		KneeAlpha:                floatToQ(kneeAlpha, 24),
		KneeBeta:                 floatToQ(kneeBeta, 24),
		K:                        floatToQ(kVal, 20),
		RatioBase:                floatToQ(ratioBase, 30),
		Slope:                    floatToQ(slope, 30),
		MasterLinearGain:         floatToQ(decibelsToLinear(k.MakeupGainDB), 24),
		AttackFrames:             floatToQ(attackFrames, 20),
		SatReleaseFramesInvNeg:   floatToQ(satReleaseFramesInvNeg, 30),
		SatReleaseRateAtNegTwoDB: floatToQ(satReleaseRateAtNegTwoDB, 30),
		KA: floatToQ(releaseCurve[0], 12),
		KB: floatToQ(releaseCurve[1], 12),
		KC: floatToQ(releaseCurve[2], 12),
		KD: floatToQ(releaseCurve[3], 12),
		KE: floatToQ(releaseCurve[4], 12),
	}

	if qToFloat(p.LinearThreshold, 30) > qToFloat(p.KneeThreshold, 24) {
		return Params{}, fmt.Errorf("engine: linear_threshold must be <= knee_threshold")
	}

	return p, nil
}

// computeKneeK solves for the knee exponential rate K such that the knee
// curve's derivative at knee_threshold matches the ratio segment's slope
// there (1st-derivative continuity, §4.3). Solved numerically since the
// closed form is transcendental in K.
func computeKneeK(linearThreshold, kneeThreshold, slope float64) float64 {
	if kneeThreshold <= linearThreshold {
		return 1.0
	}
	// Bisection on K in knee_curveK'(knee_threshold) == slope *
	// knee_curveK(knee_threshold)/knee_threshold, i.e. matching the
	// ratio segment's relative slope at the knee boundary.
	lo, hi := 1e-3, 1e3
	f := func(kVal float64) float64 {
		// d/dx [linear_threshold + (1-exp(-k(x-linear_threshold)))/k] = exp(-k(x-linear_threshold))
		e := math.Exp(-kVal * (kneeThreshold - linearThreshold))
		y := linearThreshold + (1-e)/kVal
		return e - slope*y/kneeThreshold
	}
	for i := 0; i < 60; i++ {
		mid := (lo + hi) / 2
		if f(mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
