package engine

import "math"

// compressOutput applies gain to the division about to be read out of the
// pre-delay, slewing compressor_gain geometrically toward
// scaled_desired_gain over DivisionFrames/4 outer steps of 4 samples each
// (§4.5).
func compressOutput(s *State, p *Params, nch int) {
	masterLinearGain := qToFloat(p.MasterLinearGain, 24)
	envelopeRate := qToFloat(s.envelopeRate, 30)
	scaledDesiredGain := qToFloat(s.scaledDesiredGain, 30)
	compressorGain := qToFloat(s.compressorGain, 30)
	divStart := s.preDelay[0].readIndex
	count := DivisionFrames / 4

	var x [4]float64

	if envelopeRate < 1 {
		// Attack: reduce gain toward the desired level.
		c := compressorGain - scaledDesiredGain
		base := scaledDesiredGain
		r := 1 - envelopeRate
		x = [4]float64{c * r, c * r * r, c * r * r * r, c * r * r * r * r}
		r4 := r * r * r * r

		inc := 0
		for i := 0; ; i++ {
			for j := 0; j < 4; j++ {
				postWarp := warpSin(x[j] + base)
				totalGain := masterLinearGain * postWarp
				applyGain(s, divStart+inc, nch, totalGain)
				inc++
			}
			if i+1 == count {
				break
			}
			for j := 0; j < 4; j++ {
				x[j] *= r4
			}
		}

		s.compressorGain = floatToQ(x[3]+base, 30)
		return
	}

	// Release: exponentially increase gain toward 1.0.
	c := compressorGain
	r := envelopeRate
	x = [4]float64{c * r, c * r * r, c * r * r * r, c * r * r * r * r}
	r4 := r * r * r * r

	inc := 0
	for i := 0; ; i++ {
		for j := 0; j < 4; j++ {
			postWarp := warpSin(x[j])
			totalGain := masterLinearGain * postWarp
			applyGain(s, divStart+inc, nch, totalGain)
			inc++
		}
		if i+1 == count {
			break
		}
		for j := 0; j < 4; j++ {
			x[j] = math.Min(1.0, x[j]*r4)
		}
	}

	s.compressorGain = floatToQ(x[3], 30)
}

// applyGain multiplies the sample at the given ring offset, on every
// active channel, by totalGain, in place.
func applyGain(s *State, offset, nch int, totalGain float64) {
	for ch := 0; ch < nch; ch++ {
		sample := qToFloat(s.preDelay[ch].At(offset), 31)
		s.preDelay[ch].Set(offset, floatToQ(sample*totalGain, 31))
	}
}
