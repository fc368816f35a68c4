package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileDefaultKnobs(t *testing.T) {
	p, err := Compile(DefaultKnobs(), 48000)
	require.NoError(t, err)

	assert.True(t, p.Enabled)
	assert.LessOrEqual(t, qToFloat(p.LinearThreshold, 30), qToFloat(p.KneeThreshold, 24))
	slope := qToFloat(p.Slope, 30)
	assert.Greater(t, slope, 0.0)
	assert.Less(t, slope, 1.0)
	assert.Greater(t, qToFloat(p.AttackFrames, 20), 0.0)
}

func TestCompileRejectsInvalidRatio(t *testing.T) {
	k := DefaultKnobs()
	k.Ratio = 1.0
	_, err := Compile(k, 48000)
	assert.Error(t, err)
}

func TestCompileRejectsInvalidAttack(t *testing.T) {
	k := DefaultKnobs()
	k.AttackSec = 0
	_, err := Compile(k, 48000)
	assert.Error(t, err)
}

func TestCompileRejectsBadSampleRate(t *testing.T) {
	_, err := Compile(DefaultKnobs(), 0)
	assert.Error(t, err)
}

func TestVolumeGainBelowThreshold(t *testing.T) {
	p, err := Compile(DefaultKnobs(), 48000)
	require.NoError(t, err)

	linearThreshold := qToFloat(p.LinearThreshold, 30)
	assert.Equal(t, 1.0, volumeGain(&p, linearThreshold/2))
}

func TestVolumeGainAboveKnee(t *testing.T) {
	k := DefaultKnobs()
	k.ThresholdDB = -20
	k.KneeWidthDB = 0
	k.Ratio = 4
	p, err := Compile(k, 48000)
	require.NoError(t, err)

	kneeThreshold := qToFloat(p.KneeThreshold, 24)
	gain := volumeGain(&p, kneeThreshold*4)
	// Well above the knee the curve should compress (gain < 1).
	assert.Less(t, gain, 1.0)
	assert.Greater(t, gain, 0.0)
}
