package engine

// State is the per-stage-instance engine state (§3.3). It is re-set up
// whenever a configuration is adopted (buffers re-zeroed, indices reset)
// and otherwise persists across copy invocations.
type State struct {
	channels int

	preDelay [MaxChannels]PreDelay

	lastPreDelayFrames int

	detectorAverage Q // Q30, in (0,1]
	compressorGain  Q // Q30

	envelopeRate       Q // Q30
	scaledDesiredGain  Q // Q30

	maxAttackCompressionDiffDB Q // Q20, reset to negative sentinel on release

	processed bool

	// OnAnomaly, if set, is called whenever sanitize() substitutes a
	// default for a non-finite detector/envelope value. The engine stays
	// free of a logging dependency; a host (internal/stage) wires this to
	// its own telemetry.
	OnAnomaly func(field string)
}

func (s *State) reportAnomaly(field string) {
	if s.OnAnomaly != nil {
		s.OnAnomaly(field)
	}
}

// negSentinel stands in for the original's INT32_MIN sentinel marking "no
// attack in progress yet".
const negSentinel Q = -1 << 31

// NewState returns a State with channels pre-delay rings, reset to the
// identity configuration (gain 1, DefaultPreDelayFrames of look-ahead).
func NewState(channels int) *State {
	if channels < 1 {
		channels = 1
	}
	if channels > MaxChannels {
		channels = MaxChannels
	}
	s := &State{channels: channels}
	s.Reset()
	return s
}

// Reset zeros detector/envelope state and all pre-delay buffers, sets
// compressor_gain back to 1.0 and restores the DefaultPreDelayFrames
// index layout, matching drc_reset_state in the original.
func (s *State) Reset() {
	for ch := 0; ch < s.channels; ch++ {
		s.preDelay[ch].Reset()
	}

	s.detectorAverage = 0
	s.compressorGain = floatToQ(1.0, 30)

	s.lastPreDelayFrames = DefaultPreDelayFrames
	s.preDelay[0].readIndex = 0
	s.preDelay[0].writeIndex = DefaultPreDelayFrames
	for ch := 1; ch < s.channels; ch++ {
		s.preDelay[ch].readIndex = 0
		s.preDelay[ch].writeIndex = DefaultPreDelayFrames
	}

	s.envelopeRate = 0
	s.scaledDesiredGain = 0
	s.processed = false
	s.maxAttackCompressionDiffDB = negSentinel
}

// Setup (re-)configures the engine for a freshly adopted Params: resets all
// state, then applies the configured pre-delay time (§4.2/§4.6 "full
// setup, reset state").
func (s *State) Setup(p *Params, sampleRate float64) {
	s.Reset()
	var frames int
	for ch := 0; ch < s.channels; ch++ {
		frames = s.preDelay[ch].setPreDelay(p.PreDelayTime, sampleRate, s.lastPreDelayFrames)
	}
	s.lastPreDelayFrames = frames
}

// Channels returns the channel count the state was created for.
func (s *State) Channels() int { return s.channels }

// LastPreDelayFrames returns the current look-ahead in frames.
func (s *State) LastPreDelayFrames() int { return s.lastPreDelayFrames }

// DetectorAverage returns the current smoothed shaped-gain, in (0,1].
func (s *State) DetectorAverage() float64 { return qToFloat(s.detectorAverage, 30) }

// CompressorGain returns the current applied pre-master gain.
func (s *State) CompressorGain() float64 { return qToFloat(s.compressorGain, 30) }
