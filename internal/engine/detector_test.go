package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func detectorTestParams(t testing.TB) *Params {
	p, err := Compile(DefaultKnobs(), 16000)
	require.NoError(t, err)
	return &p
}

// TestDetectorAverageBoundedSilence exercises §8 invariant 1
// (0 < detector_average <= 1) for a silent division.
func TestDetectorAverageBoundedSilence(t *testing.T) {
	p := detectorTestParams(t)
	s := NewState(1)
	s.Setup(p, 16000)

	updateDetectorAverage(s, p, 1)
	avg := s.DetectorAverage()
	assert.Greater(t, avg, 0.0)
	assert.LessOrEqual(t, avg, 1.0)
}

// TestDetectorAverageInvariantProperty checks §8 invariant 1 across random
// sequences of divisions and input amplitudes.
func TestDetectorAverageInvariantProperty(t *testing.T) {
	p := detectorTestParams(t)

	rapid.Check(t, func(rt *rapid.T) {
		s := NewState(1)
		s.Setup(p, 16000)

		divisions := rapid.IntRange(1, 8).Draw(rt, "divisions")
		for d := 0; d < divisions; d++ {
			amp := rapid.Float64Range(0, 1).Draw(rt, "amp")
			for i := 0; i < DivisionFrames; i++ {
				s.preDelay[0].Write(floatToQ(amp, 31))
			}
			updateDetectorAverage(s, p, 1)

			avg := s.DetectorAverage()
			if avg <= 0 || avg > 1 {
				rt.Fatalf("detector_average out of (0,1]: %v", avg)
			}
		}
	})
}

func TestVolumeGainPassesThroughBelowThreshold(t *testing.T) {
	p := detectorTestParams(t)
	g := volumeGain(p, 0)
	assert.Equal(t, 1.0, g)
}
