package stage

import (
	"fmt"

	charmlog "github.com/charmbracelet/log"
	"github.com/drcstage/drc/internal/engine"
	"github.com/drcstage/drc/internal/telemetry"
)

// State is the pipeline-stage lifecycle state (§4.7).
type State int

const (
	StateReady State = iota
	StatePrepared
	StateActive
	StateFreed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StatePrepared:
		return "PREPARED"
	case StateActive:
		return "ACTIVE"
	case StateFreed:
		return "FREED"
	default:
		return "UNKNOWN"
	}
}

// Trigger is a lifecycle command the host issues (§4.7).
type Trigger int

const (
	// TriggerStart, TriggerStop, TriggerReset are the triggers driven
	// through Trigger(). "prepare" is not among them: it requires
	// negotiated stream params and is issued via Prepare() directly,
	// matching how a real host would call a typed prepare() op rather
	// than a generic trigger for that one transition.
	TriggerStart Trigger = iota
	TriggerStop
	TriggerReset
)

// StreamParams describes the negotiated source/sink stream the host binds
// a stage to (§6.1 prepare contract).
type StreamParams struct {
	Format       SampleFormat
	Channels     int
	SampleRate   float64
	Periods      int
	PeriodFrames int
}

func (p StreamParams) bytesPerFrame() int {
	width := 2
	switch p.Format {
	case FormatS24In32LE, FormatS32LE:
		width = 4
	}
	return width * p.Channels
}

// Stage implements the §4.7 lifecycle state machine and the §6.1 host
// contract around an engine.State. It owns the committed configuration
// plus a staged "config_new" slot adopted at the next Copy boundary
// (§3.4, §5 "single-writer single-reader").
type Stage struct {
	state State

	config    *engine.Params
	configNew *engine.Params

	transport Transport

	engineState *engine.State
	sampleRate  float64
	channels    int
	format      SampleFormat

	log *telemetry.Logger
}

// New creates a stage in the READY state, with an optional initial
// configuration blob (§6.1 create). A nil or empty blob leaves the stage
// configless, which prepare() binds to pass-through.
func New(initialBlob []byte) (*Stage, error) {
	return NewWithLogger(initialBlob, telemetry.New(charmlog.InfoLevel))
}

// NewWithLogger is New with an explicit logger, for a host that wants its
// own sink/level (e.g. drchost wiring the stage's logger into its own).
func NewWithLogger(initialBlob []byte, logger *telemetry.Logger) (*Stage, error) {
	if len(initialBlob) > engine.MaxConfigBytes {
		return nil, ErrConfigTooLarge
	}

	s := &Stage{state: StateReady, log: logger}
	if len(initialBlob) > 0 {
		p, err := DecodeParams(initialBlob)
		if err != nil {
			return nil, err
		}
		s.config = &p
	}
	return s, nil
}

// State returns the stage's current lifecycle state.
func (s *Stage) State() State { return s.state }

// SetData handles a chunk of an incoming chunked configuration upload
// (§6.2). It returns ErrConfigBusy if a previous upload is still pending.
func (s *Stage) SetData(c Chunk) error {
	if s.state == StateFreed {
		return ErrFreed
	}

	blob, finished, err := s.transport.SetData(c)
	if err != nil {
		s.log.StageError("set_data", err)
		return err
	}
	if !finished {
		return nil
	}

	p, err := DecodeParams(blob)
	if err != nil {
		s.log.StageError("set_data", err)
		return err
	}

	// §6.2: if READY, drop the old live config and adopt immediately if
	// there wasn't one already; otherwise stage for the next Copy.
	if s.state == StateReady {
		s.config = nil
	}
	if s.config == nil {
		s.config = &p
		s.configNew = nil
		s.log.ConfigAdopted(false)
	} else {
		s.configNew = &p
		s.log.ConfigAdopted(true)
	}
	return nil
}

// GetData reads back a chunk of the live configuration (§6.2 read-back).
func (s *Stage) GetData(msgIndex uint32, maxSize int) (Chunk, error) {
	if s.state == StateFreed {
		return Chunk{}, ErrFreed
	}
	if s.config == nil {
		return Chunk{}, ErrNoConfig
	}
	return GetData(EncodeParams(s.config), msgIndex, maxSize)
}

// Prepare transitions READY -> PREPARED: validates the negotiated stream
// params, allocates the engine's pre-delay buffers, and binds a
// processing function for the sample format (§4.7, §6.1, §7).
func (s *Stage) Prepare(source, sink StreamParams) error {
	if err := s.prepareChecked(source, sink); err != nil {
		s.log.StageError("prepare", err)
		return err
	}
	s.log.Transition(StateReady.String(), StatePrepared.String())
	return nil
}

func (s *Stage) prepareChecked(source, sink StreamParams) error {
	if s.state != StateReady {
		return ErrInvalidTransition
	}
	if source.Format != sink.Format || source.Channels != sink.Channels {
		return ErrFormatMismatch
	}
	if source.Channels > engine.MaxChannels {
		return ErrTooManyChannels
	}
	if sink.Periods*sink.PeriodFrames*sink.bytesPerFrame() == 0 {
		return ErrSinkTooSmall
	}
	if !formatSupported(source.Format) {
		return ErrNoProcessFunc
	}

	s.sampleRate = source.SampleRate
	s.channels = source.Channels
	s.format = source.Format
	s.engineState = engine.NewState(source.Channels)
	s.engineState.OnAnomaly = func(field string) { s.log.Anomaly(field) }

	if s.config != nil {
		s.engineState.Setup(s.config, s.sampleRate)
	}

	s.state = StatePrepared
	return nil
}

func formatSupported(f SampleFormat) bool {
	switch f {
	case FormatS16LE, FormatS24In32LE, FormatS32LE:
		return true
	default:
		return false
	}
}

// Trigger delegates to the lifecycle state machine (§4.7 table).
func (s *Stage) Trigger(t Trigger) error {
	from := s.state
	var err error
	switch t {
	case TriggerStart:
		if s.state != StatePrepared {
			err = ErrInvalidTransition
		} else {
			s.state = StateActive
		}
	case TriggerStop:
		if s.state != StateActive {
			err = ErrInvalidTransition
		} else {
			s.state = StatePrepared
		}
	case TriggerReset:
		s.resetToReady()
	default:
		err = fmt.Errorf("stage: unknown trigger %d", t)
	}

	if err != nil {
		s.log.StageError("trigger", err)
		return err
	}
	s.log.Transition(from.String(), s.state.String())
	return nil
}

func (s *Stage) resetToReady() {
	if s.engineState != nil {
		s.engineState.Reset()
	}
	s.engineState = nil
	s.state = StateReady
}

// Free releases the stage; no further operations are valid afterward
// (§4.7). Valid only from READY, matching the table's single "free"
// row — an active or prepared stage must be stopped and reset first.
func (s *Stage) Free() error {
	if s.state == StateFreed {
		return ErrFreed
	}
	if s.state != StateReady {
		s.log.StageError("free", ErrInvalidTransition)
		return ErrInvalidTransition
	}
	s.state = StateFreed
	return nil
}

// Copy processes frames frames through frag, swapping in a staged
// configuration first if one is pending (§4.6 step 0, §4.7 copy row).
// frag must match the SampleFormat this stage was prepared with; callers
// build it with engine.S16Frag/S24Frag/S32Frag (or the CopyS16/S24/S32
// convenience wrappers below).
func (s *Stage) Copy(frag engine.SampleFrag, frames int) error {
	if s.state != StateActive {
		return ErrInvalidTransition
	}

	if s.configNew != nil {
		s.config = s.configNew
		s.configNew = nil
		s.engineState.Setup(s.config, s.sampleRate)
	}

	if s.config == nil {
		passthroughParams := engine.Params{Enabled: false}
		engine.Copy(s.engineState, &passthroughParams, frag, s.channels, frames)
		return nil
	}

	engine.Copy(s.engineState, s.config, frag, s.channels, frames)
	return nil
}

// CopyS16 is a convenience wrapper around Copy for S16_LE streams.
func (s *Stage) CopyS16(source, sink []int16, frames int) error {
	return s.Copy(&engine.S16Frag{Source: source, Sink: sink, Channels: s.channels}, frames)
}

// CopyS24 is a convenience wrapper around Copy for S24_4LE streams.
func (s *Stage) CopyS24(source, sink []int32, frames int) error {
	return s.Copy(&engine.S24Frag{Source: source, Sink: sink, Channels: s.channels}, frames)
}

// CopyS32 is a convenience wrapper around Copy for S32_LE streams.
func (s *Stage) CopyS32(source, sink []int32, frames int) error {
	return s.Copy(&engine.S32Frag{Source: source, Sink: sink, Channels: s.channels}, frames)
}

// EngineState exposes the underlying engine state for metering/tests.
func (s *Stage) EngineState() *engine.State { return s.engineState }
