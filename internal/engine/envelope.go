package engine

import "math"

// releaseDbSpacing is the fixed dB-per-envelope-step used by the release
// branch's rate computation (§4.4 step 5).
const releaseDbSpacing = 5

// updateEnvelope runs once per division, after the detector, producing
// envelope_rate (per-sample multiplicative slew) and scaled_desired_gain
// for the upcoming compress_output pass (§4.4).
func updateEnvelope(s *State, p *Params) {
	ka := qToFloat(p.KA, 12)
	kb := qToFloat(p.KB, 12)
	kc := qToFloat(p.KC, 12)
	kd := qToFloat(p.KD, 12)
	ke := qToFloat(p.KE, 12)
	attackFrames := qToFloat(p.AttackFrames, 20)

	desiredGain := qToFloat(s.detectorAverage, 30)
	scaledDesiredGain := warpAsin(desiredGain)

	compressorGain := qToFloat(s.compressorGain, 30)
	isReleasing := scaledDesiredGain > compressorGain

	compressionDiffDB := linearToDecibels(compressorGain / scaledDesiredGain)

	var envelopeRate float64

	if isReleasing {
		s.maxAttackCompressionDiffDB = negSentinel

		if isBad(compressionDiffDB) {
			s.reportAnomaly("release_compression_diff_db")
		}
		compressionDiffDB = sanitize(compressionDiffDB, -1)

		x := compressionDiffDB
		x = math.Max(-12.0, x)
		x = math.Min(0.0, x)
		x = 0.25 * (x + 12)

		x2 := x * x
		x3 := x2 * x
		x4 := x2 * x2
		releaseFrames := ka + kb*x + kc*x2 + kd*x3 + ke*x4

		dbPerFrame := releaseDbSpacing / releaseFrames
		envelopeRate = decibelsToLinear(dbPerFrame)
	} else {
		if isBad(compressionDiffDB) {
			s.reportAnomaly("attack_compression_diff_db")
		}
		compressionDiffDB = sanitize(compressionDiffDB, 1)

		current := qToFloat(s.maxAttackCompressionDiffDB, 20)
		if compressionDiffDB > current {
			current = compressionDiffDB
		}
		s.maxAttackCompressionDiffDB = floatToQ(current, 20)

		effAttenDiffDB := math.Max(0.5, current)

		x := 0.25 / effAttenDiffDB
		envelopeRate = 1 - math.Pow(x, 1/attackFrames)
	}

	s.envelopeRate = floatToQ(envelopeRate, 30)
	s.scaledDesiredGain = floatToQ(scaledDesiredGain, 30)
}
