package stage

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/drcstage/drc/internal/engine"
)

// blobMagic tags an encoded configuration blob so malformed or
// foreign-version payloads fail fast on decode.
const blobMagic uint32 = 0x44524331 // "DRC1"

// wireParams is the flat, fixed-layout encoding of engine.Params used on
// the wire (§6.2) and for state persistence. All fields are little-endian.
type wireParams struct {
	Magic   uint32
	Enabled uint32

	PreDelayTimeMicros uint32

	LinearThreshold  int32
	KneeThreshold    int32
	KneeAlpha        int32
	KneeBeta         int32
	K                int32
	RatioBase        int32
	Slope            int32
	MasterLinearGain int32

	AttackFrames             int32
	SatReleaseFramesInvNeg   int32
	SatReleaseRateAtNegTwoDB int32

	KA, KB, KC, KD, KE int32
}

// EncodeParams serializes p into the binary blob format §6.2's chunked
// transport carries.
func EncodeParams(p *engine.Params) []byte {
	enabled := uint32(0)
	if p.Enabled {
		enabled = 1
	}
	w := wireParams{
		Magic:                    blobMagic,
		Enabled:                  enabled,
		PreDelayTimeMicros:       uint32(p.PreDelayTime * 1e6),
		LinearThreshold:          int32(p.LinearThreshold),
		KneeThreshold:            int32(p.KneeThreshold),
		KneeAlpha:                int32(p.KneeAlpha),
		KneeBeta:                 int32(p.KneeBeta),
		K:                        int32(p.K),
		RatioBase:                int32(p.RatioBase),
		Slope:                    int32(p.Slope),
		MasterLinearGain:         int32(p.MasterLinearGain),
		AttackFrames:             int32(p.AttackFrames),
		SatReleaseFramesInvNeg:   int32(p.SatReleaseFramesInvNeg),
		SatReleaseRateAtNegTwoDB: int32(p.SatReleaseRateAtNegTwoDB),
		KA:                       int32(p.KA),
		KB:                       int32(p.KB),
		KC:                       int32(p.KC),
		KD:                       int32(p.KD),
		KE:                       int32(p.KE),
	}

	buf := &bytes.Buffer{}
	// binary.Write on a fixed-size struct of fixed-width fields never
	// errors.
	_ = binary.Write(buf, binary.LittleEndian, w)
	return buf.Bytes()
}

// DecodeParams parses a blob produced by EncodeParams back into an
// engine.Params.
func DecodeParams(blob []byte) (engine.Params, error) {
	var w wireParams
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, &w); err != nil {
		return engine.Params{}, fmt.Errorf("stage: decode config: %w", err)
	}
	if w.Magic != blobMagic {
		return engine.Params{}, fmt.Errorf("stage: decode config: bad magic %#x", w.Magic)
	}

	return engine.Params{
		Enabled:                  w.Enabled != 0,
		PreDelayTime:             float64(w.PreDelayTimeMicros) / 1e6,
		LinearThreshold:          engine.Q(w.LinearThreshold),
		KneeThreshold:            engine.Q(w.KneeThreshold),
		KneeAlpha:                engine.Q(w.KneeAlpha),
		KneeBeta:                 engine.Q(w.KneeBeta),
		K:                        engine.Q(w.K),
		RatioBase:                engine.Q(w.RatioBase),
		Slope:                    engine.Q(w.Slope),
		MasterLinearGain:         engine.Q(w.MasterLinearGain),
		AttackFrames:             engine.Q(w.AttackFrames),
		SatReleaseFramesInvNeg:   engine.Q(w.SatReleaseFramesInvNeg),
		SatReleaseRateAtNegTwoDB: engine.Q(w.SatReleaseRateAtNegTwoDB),
		KA: engine.Q(w.KA),
		KB: engine.Q(w.KB),
		KC: engine.Q(w.KC),
		KD: engine.Q(w.KD),
		KE: engine.Q(w.KE),
	}, nil
}
