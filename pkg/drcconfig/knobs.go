// Package drcconfig is the control-plane surface around engine.Params: a
// lock-free atomic parameter bank a host can update from any goroutine
// while the audio thread reads it (each knob is loaded atomically; a
// Snapshot taken during concurrent updates may mix old and new values
// across knobs), plus YAML-authored configuration loading. It plays the role that pkg/framework/param's
// atomic Parameter plays for a VST3 plugin host, adapted to the DRC
// compressor's own plain-unit knobs rather than normalized 0-1 values.
package drcconfig

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/drcstage/drc/internal/engine"
)

// Knob is a single atomically-updatable control, addressed in its own
// plain unit (dB, seconds, ratio) rather than normalized.
type Knob struct {
	Name string
	Unit string
	Min  float64
	Max  float64

	bits uint64
}

func newKnob(name, unit string, min, max, def float64) *Knob {
	k := &Knob{Name: name, Unit: unit, Min: min, Max: max}
	k.Set(def)
	return k
}

// Get returns the knob's current value.
func (k *Knob) Get() float64 {
	return math.Float64frombits(atomic.LoadUint64(&k.bits))
}

// Set clamps v to [Min, Max] and stores it atomically.
func (k *Knob) Set(v float64) {
	if v < k.Min {
		v = k.Min
	} else if v > k.Max {
		v = k.Max
	}
	atomic.StoreUint64(&k.bits, math.Float64bits(v))
}

// Bank is the full set of human-facing DRC controls. A host mutates Banks
// from a control thread (UI, config file watcher, RPC handler); Snapshot
// is called from the processing thread immediately before a Prepare or a
// configuration upload, never per-division.
type Bank struct {
	Enabled *Knob

	ThresholdDB  *Knob
	KneeWidthDB  *Knob
	Ratio        *Knob
	AttackSec    *Knob
	MakeupGainDB *Knob
	PreDelaySec  *Knob
}

// NewBank builds a Bank seeded from engine.DefaultKnobs.
func NewBank() *Bank {
	d := engine.DefaultKnobs()
	enabled := 0.0
	if d.Enabled {
		enabled = 1.0
	}
	return &Bank{
		Enabled:      newKnob("enabled", "bool", 0, 1, enabled),
		ThresholdDB:  newKnob("threshold", "dB", -96, 0, d.ThresholdDB),
		KneeWidthDB:  newKnob("knee_width", "dB", 0, 24, d.KneeWidthDB),
		Ratio:        newKnob("ratio", "x:1", 1.01, 20, d.Ratio),
		AttackSec:    newKnob("attack", "s", 0.0001, 1, d.AttackSec),
		MakeupGainDB: newKnob("makeup_gain", "dB", -24, 24, d.MakeupGainDB),
		PreDelaySec:  newKnob("pre_delay", "s", 0, 0.05, d.PreDelaySec),
	}
}

// Snapshot reads every knob's current value into an engine.Knobs, using
// the release curve the bank was seeded with (release shaping isn't
// exposed as individual atomic knobs since it's a 5-coefficient curve,
// not a single scalar a host UI would expose).
func (b *Bank) Snapshot() engine.Knobs {
	return engine.Knobs{
		Enabled:      b.Enabled.Get() != 0,
		ThresholdDB:  b.ThresholdDB.Get(),
		KneeWidthDB:  b.KneeWidthDB.Get(),
		Ratio:        b.Ratio.Get(),
		AttackSec:    b.AttackSec.Get(),
		MakeupGainDB: b.MakeupGainDB.Get(),
		PreDelaySec:  b.PreDelaySec.Get(),
		ReleaseCurve: engine.DefaultReleaseCurve,
	}
}

// Compile snapshots the bank and compiles it into engine.Params at the
// given sample rate.
func (b *Bank) Compile(sampleRate float64) (engine.Params, error) {
	p, err := engine.Compile(b.Snapshot(), sampleRate)
	if err != nil {
		return engine.Params{}, fmt.Errorf("drcconfig: compile bank: %w", err)
	}
	return p, nil
}

// Apply pushes every field of k into the bank's knobs.
func (b *Bank) Apply(k engine.Knobs) {
	enabled := 0.0
	if k.Enabled {
		enabled = 1.0
	}
	b.Enabled.Set(enabled)
	b.ThresholdDB.Set(k.ThresholdDB)
	b.KneeWidthDB.Set(k.KneeWidthDB)
	b.Ratio.Set(k.Ratio)
	b.AttackSec.Set(k.AttackSec)
	b.MakeupGainDB.Set(k.MakeupGainDB)
	b.PreDelaySec.Set(k.PreDelaySec)
}
