package stage

import (
	"testing"

	"github.com/drcstage/drc/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStreamParams(format SampleFormat, channels int) StreamParams {
	return StreamParams{
		Format:       format,
		Channels:     channels,
		SampleRate:   48000,
		Periods:      2,
		PeriodFrames: 64,
	}
}

func TestNewRejectsOversizedBlob(t *testing.T) {
	blob := make([]byte, engine.MaxConfigBytes+1)
	_, err := New(blob)
	assert.ErrorIs(t, err, error(ErrConfigTooLarge))
}

func TestLifecycleHappyPath(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, StateReady, s.State())

	sp := testStreamParams(FormatS16LE, 2)
	require.NoError(t, s.Prepare(sp, sp))
	assert.Equal(t, StatePrepared, s.State())

	require.NoError(t, s.Trigger(TriggerStart))
	assert.Equal(t, StateActive, s.State())

	src := make([]int16, 2*8)
	sink := make([]int16, 2*8)
	require.NoError(t, s.CopyS16(src, sink, 8))

	require.NoError(t, s.Trigger(TriggerStop))
	assert.Equal(t, StatePrepared, s.State())

	require.NoError(t, s.Trigger(TriggerReset))
	assert.Equal(t, StateReady, s.State())

	require.NoError(t, s.Free())
	assert.Equal(t, StateFreed, s.State())
}

func TestTriggerFromWrongStateFails(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Trigger(TriggerStart), error(ErrInvalidTransition))
	assert.ErrorIs(t, s.Trigger(TriggerStop), error(ErrInvalidTransition))

	sp := testStreamParams(FormatS16LE, 2)
	require.NoError(t, s.Prepare(sp, sp))
	assert.ErrorIs(t, s.Trigger(TriggerStop), error(ErrInvalidTransition))
}

func TestPrepareRejectsFormatMismatch(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	source := testStreamParams(FormatS16LE, 2)
	sink := testStreamParams(FormatS32LE, 2)
	assert.ErrorIs(t, s.Prepare(source, sink), error(ErrFormatMismatch))
}

func TestPrepareRejectsTooManyChannels(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	sp := testStreamParams(FormatS16LE, engine.MaxChannels+1)
	assert.ErrorIs(t, s.Prepare(sp, sp), error(ErrTooManyChannels))
}

func TestCopyBeforeActiveFails(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	sp := testStreamParams(FormatS16LE, 1)
	require.NoError(t, s.Prepare(sp, sp))

	src := make([]int16, 8)
	sink := make([]int16, 8)
	assert.ErrorIs(t, s.CopyS16(src, sink, 8), error(ErrInvalidTransition))
}

func TestFreeTwiceFails(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, s.Free())
	assert.ErrorIs(t, s.Free(), error(ErrFreed))
}

// TestFreeFromPreparedFails ensures free is only valid from READY (§4.7
// table): a prepared-but-not-torn-down stage must reject Free rather than
// silently releasing its engine state.
func TestFreeFromPreparedFails(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	sp := testStreamParams(FormatS16LE, 1)
	require.NoError(t, s.Prepare(sp, sp))

	assert.ErrorIs(t, s.Free(), error(ErrInvalidTransition))
	assert.Equal(t, StatePrepared, s.State())
}

// TestFreeFromActiveFails is the same check from the ACTIVE state.
func TestFreeFromActiveFails(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	sp := testStreamParams(FormatS16LE, 1)
	require.NoError(t, s.Prepare(sp, sp))
	require.NoError(t, s.Trigger(TriggerStart))

	assert.ErrorIs(t, s.Free(), error(ErrInvalidTransition))
	assert.Equal(t, StateActive, s.State())
}

// TestConfigUploadBusyRejectsSecondStart exercises §8 boundary 13: a second
// msg_index==0 chunk while one upload is already in progress is rejected.
func TestConfigUploadBusyRejectsSecondStart(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	first := Chunk{MsgIndex: 0, NumElems: 4, ElemsRemaining: 4, Data: []byte{1, 2, 3, 4}}
	require.NoError(t, s.SetData(first))

	second := Chunk{MsgIndex: 0, NumElems: 2, ElemsRemaining: 0, Data: []byte{5, 6}}
	assert.ErrorIs(t, s.SetData(second), error(ErrConfigBusy))
	assert.True(t, IsBusy(s.SetData(second)))
}

// TestConfigUploadPromotesWhenReady verifies that a completed upload on a
// READY stage with no prior config is adopted immediately (§6.2).
func TestConfigUploadPromotesWhenReady(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	blob := EncodeParams(&engine.Params{Enabled: true})
	require.NoError(t, uploadInOneChunk(s, blob))

	assert.NotNil(t, s.config)
	assert.True(t, s.config.Enabled)
}

// TestConfigUploadDefersWhileActive verifies a completed upload while a
// live config is already bound stages into config_new rather than
// mutating the live config (§3.4, §4.6 step 0).
func TestConfigUploadDefersWhileActive(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	initial := EncodeParams(&engine.Params{Enabled: false})
	require.NoError(t, uploadInOneChunk(s, initial))

	sp := testStreamParams(FormatS16LE, 1)
	require.NoError(t, s.Prepare(sp, sp))
	require.NoError(t, s.Trigger(TriggerStart))

	updated := EncodeParams(&engine.Params{Enabled: true})
	require.NoError(t, uploadInOneChunk(s, updated))

	assert.False(t, s.config.Enabled, "live config must not change before the next copy boundary")
	require.NotNil(t, s.configNew)
	assert.True(t, s.configNew.Enabled)

	src := make([]int16, 8)
	sink := make([]int16, 8)
	require.NoError(t, s.CopyS16(src, sink, 8))

	assert.True(t, s.config.Enabled, "copy boundary must promote the staged config")
	assert.Nil(t, s.configNew)
}

func TestGetDataRoundTrip(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	want := EncodeParams(&engine.Params{Enabled: true, PreDelayTime: 0.002})
	require.NoError(t, uploadInOneChunk(s, want))

	got, err := roundTripGetData(s, len(want)+16)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetDataWithoutConfigFails(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	_, err = s.GetData(0, 64)
	assert.ErrorIs(t, err, error(ErrNoConfig))
}

func uploadInOneChunk(s *Stage, blob []byte) error {
	return s.SetData(Chunk{MsgIndex: 0, NumElems: uint32(len(blob)), ElemsRemaining: 0, Data: blob})
}

func roundTripGetData(s *Stage, maxSize int) ([]byte, error) {
	var out []byte
	msgIndex := uint32(0)
	for {
		c, err := s.GetData(msgIndex, maxSize)
		if err != nil {
			return nil, err
		}
		out = append(out, c.Data...)
		if c.ElemsRemaining == 0 {
			return out, nil
		}
		msgIndex++
	}
}
