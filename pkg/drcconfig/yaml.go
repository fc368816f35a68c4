package drcconfig

import (
	"fmt"
	"os"

	"github.com/drcstage/drc/internal/engine"
	"gopkg.in/yaml.v3"
)

// File is the on-disk, human-authored configuration format: plain units,
// YAML, meant to be hand-edited or generated by a preset tool — the
// authoring counterpart to the binary blob §6.2's chunked transport moves
// over the wire.
type File struct {
	Enabled      bool    `yaml:"enabled"`
	ThresholdDB  float64 `yaml:"threshold_db"`
	KneeWidthDB  float64 `yaml:"knee_width_db"`
	Ratio        float64 `yaml:"ratio"`
	AttackSec    float64 `yaml:"attack_sec"`
	MakeupGainDB float64 `yaml:"makeup_gain_db"`
	PreDelaySec  float64 `yaml:"pre_delay_sec"`

	// ReleaseCurve holds kA..kE; a zero-length slice selects
	// engine.DefaultReleaseCurve.
	ReleaseCurve []float64 `yaml:"release_curve,omitempty"`
}

// LoadFile reads and parses a YAML configuration file into an
// engine.Knobs.
func LoadFile(path string) (engine.Knobs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Knobs{}, fmt.Errorf("drcconfig: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes into an engine.Knobs.
func Parse(data []byte) (engine.Knobs, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return engine.Knobs{}, fmt.Errorf("drcconfig: parse yaml: %w", err)
	}

	k := engine.Knobs{
		Enabled:      f.Enabled,
		ThresholdDB:  f.ThresholdDB,
		KneeWidthDB:  f.KneeWidthDB,
		Ratio:        f.Ratio,
		AttackSec:    f.AttackSec,
		MakeupGainDB: f.MakeupGainDB,
		PreDelaySec:  f.PreDelaySec,
	}
	if len(f.ReleaseCurve) == 5 {
		copy(k.ReleaseCurve[:], f.ReleaseCurve)
	} else {
		k.ReleaseCurve = engine.DefaultReleaseCurve
	}
	return k, nil
}

// Marshal encodes k back into the YAML authoring format, e.g. for a host
// to persist an edited bank back to disk.
func Marshal(k engine.Knobs) ([]byte, error) {
	f := File{
		Enabled:      k.Enabled,
		ThresholdDB:  k.ThresholdDB,
		KneeWidthDB:  k.KneeWidthDB,
		Ratio:        k.Ratio,
		AttackSec:    k.AttackSec,
		MakeupGainDB: k.MakeupGainDB,
		PreDelaySec:  k.PreDelaySec,
	}
	if k.ReleaseCurve != engine.DefaultReleaseCurve {
		f.ReleaseCurve = k.ReleaseCurve[:]
	}
	out, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("drcconfig: marshal yaml: %w", err)
	}
	return out, nil
}
