package engine

import "math"

// kneeCurveK is the knee portion of the compression curve: the output
// level given input level x, below knee_threshold. See §4.3.
func kneeCurveK(p *Params, x float64) float64 {
	alpha := qToFloat(p.KneeAlpha, 24)
	beta := qToFloat(p.KneeBeta, 24)
	k := qToFloat(p.K, 20)
	return alpha + beta*kneeExp(-k*x)
}

// volumeGain is the full compression curve with constant ratio after the
// knee; it returns the ratio of output to input signal for input level x.
func volumeGain(p *Params, x float64) float64 {
	kneeThreshold := qToFloat(p.KneeThreshold, 24)
	linearThreshold := qToFloat(p.LinearThreshold, 30)
	ratioBase := qToFloat(p.RatioBase, 30)
	slope := qToFloat(p.Slope, 30)

	if x < kneeThreshold {
		if x < linearThreshold {
			return 1
		}
		return kneeCurveK(p, x) / x
	}
	// y/x = ratio_base * x^(slope-1) = ratio_base * e^(ln(x)*(slope-1))
	return ratioBase * kneeExp(math.Log(x)*(slope-1))
}

// updateDetectorAverage runs once per division, computing the shaped-power
// detector_average from the just-written input division (§4.3). nch is
// the active channel count.
func updateDetectorAverage(s *State, p *Params, nch int) {
	satReleaseFramesInvNeg := qToFloat(p.SatReleaseFramesInvNeg, 30)
	satReleaseRateAtNegTwoDB := qToFloat(p.SatReleaseRateAtNegTwoDB, 30)
	avg := qToFloat(s.detectorAverage, 30)

	divStart := s.preDelay[0].writeIndex - DivisionFrames
	if s.preDelay[0].writeIndex == 0 {
		divStart = MaxPreDelayFrames - DivisionFrames
	}

	var absInput [DivisionFrames]float64
	for i := 0; i < DivisionFrames; i++ {
		var m float64
		for ch := 0; ch < nch; ch++ {
			sample := math.Abs(qToFloat(s.preDelay[ch].At(divStart+i), 31))
			if sample > m {
				m = sample
			}
		}
		absInput[i] = m
	}

	for i := 0; i < DivisionFrames; i++ {
		gain := volumeGain(p, absInput[i])
		isRelease := gain > avg
		if isRelease {
			if gain > negTwoDB {
				avg += (gain - avg) * satReleaseRateAtNegTwoDB
			} else {
				gainDB := linearToDecibels(gain)
				dbPerFrame := gainDB * satReleaseFramesInvNeg
				rate := decibelsToLinear(dbPerFrame) - 1
				avg += (gain - avg) * rate
			}
		} else {
			avg = gain
		}

		if isBad(avg) {
			s.reportAnomaly("detector_average")
		}
		avg = sanitize(avg, 1.0)
		if avg > 1.0 {
			avg = 1.0
		}
	}

	s.detectorAverage = floatToQ(avg, 30)
}
