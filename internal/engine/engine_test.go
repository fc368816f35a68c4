package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateClampsChannels(t *testing.T) {
	assert.Equal(t, 1, NewState(0).Channels())
	assert.Equal(t, MaxChannels, NewState(MaxChannels+10).Channels())
	assert.Equal(t, 3, NewState(3).Channels())
}

func TestResetRestoresIdentityGain(t *testing.T) {
	s := NewState(2)
	s.compressorGain = floatToQ(0.2, 30)
	s.detectorAverage = floatToQ(0.5, 30)

	s.Reset()

	assert.InDelta(t, 1.0, s.CompressorGain(), 1e-9)
	assert.Equal(t, DefaultPreDelayFrames, s.LastPreDelayFrames())
}

// TestSetupMatchesPreDelayInvariant checks §8 invariant 2: the write/read
// index separation equals last_pre_delay_frames right after Setup.
func TestSetupMatchesPreDelayInvariant(t *testing.T) {
	p, err := Compile(DefaultKnobs(), 16000)
	require.NoError(t, err)
	p.PreDelayTime = 0.01 // 160 frames at 16kHz, division-aligned to 160

	s := NewState(1)
	s.Setup(&p, 16000)

	diff := (s.preDelay[0].writeIndex - s.preDelay[0].readIndex + MaxPreDelayFrames) % MaxPreDelayFrames
	assert.Equal(t, s.LastPreDelayFrames(), diff)
}

// TestResetThenPrepareMatchesFreshInstance is §8 property 9: reset
// followed by re-setup with the same config yields the same engine state
// as a freshly constructed one.
func TestResetThenPrepareMatchesFreshInstance(t *testing.T) {
	p, err := Compile(DefaultKnobs(), 16000)
	require.NoError(t, err)

	fresh := NewState(1)
	fresh.Setup(&p, 16000)

	dirty := NewState(1)
	dirty.Setup(&p, 16000)
	for i := 0; i < DivisionFrames*3; i++ {
		dirty.preDelay[0].Write(floatToQ(0.9, 31))
	}
	processDivision(dirty, &p, 1)
	dirty.Reset()
	dirty.Setup(&p, 16000)

	assert.Equal(t, fresh.CompressorGain(), dirty.CompressorGain())
	assert.Equal(t, fresh.DetectorAverage(), dirty.DetectorAverage())
	assert.Equal(t, fresh.LastPreDelayFrames(), dirty.LastPreDelayFrames())
}
