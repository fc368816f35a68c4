package stage

import "github.com/drcstage/drc/internal/engine"

// Chunk is one fragment of a chunked binary configuration transfer, shaped
// after §6.2's wire contract.
type Chunk struct {
	MsgIndex       uint32
	NumElems       uint32
	ElemsRemaining uint32
	Data           []byte
}

// Transport implements the chunked configuration upload/read-back
// protocol from §6.2. It holds the staging slot a multi-chunk upload
// accumulates into; the caller (Stage) owns the "live" configuration and
// decides when to promote staging to live.
type Transport struct {
	staging     []byte
	stagingSize int
	inProgress  bool
}

// Busy reports whether an upload is currently in progress (staging slot
// non-empty, per §6.2's msg_index==0 busy check / §8 boundary 13).
func (t *Transport) Busy() bool { return t.inProgress }

// Reset discards any in-progress upload, without touching a live config.
func (t *Transport) Reset() {
	t.staging = nil
	t.stagingSize = 0
	t.inProgress = false
}

// SetData appends one chunk of an incoming upload. On the chunk carrying
// ElemsRemaining==0, it returns the fully assembled blob and finished=true;
// the caller is responsible for promoting it to live at the right point
// (§6.2's "If the stage is in READY ... promote now; otherwise at the next
// copy").
func (t *Transport) SetData(c Chunk) (blob []byte, finished bool, err error) {
	if c.MsgIndex == 0 {
		if t.inProgress {
			return nil, false, ErrConfigBusy
		}
		size := int(c.NumElems) + int(c.ElemsRemaining)
		if size > engine.MaxConfigBytes {
			return nil, false, ErrConfigTooLarge
		}
		t.staging = make([]byte, size)
		t.stagingSize = size
		t.inProgress = true
	}
	if !t.inProgress {
		return nil, false, ErrConfigMalformed
	}

	offset := t.stagingSize - int(c.ElemsRemaining) - int(c.NumElems)
	if offset < 0 || offset+int(c.NumElems) > t.stagingSize || int(c.NumElems) != len(c.Data) {
		t.Reset()
		return nil, false, ErrConfigMalformed
	}
	copy(t.staging[offset:offset+int(c.NumElems)], c.Data)

	if c.ElemsRemaining == 0 {
		blob := t.staging
		t.Reset()
		return blob, true, nil
	}
	return nil, false, nil
}

// GetData chunks blob for read-back, mirroring the upload protocol: each
// call advances msgIndex and returns up to maxSize bytes of payload plus
// the bytes still remaining after this chunk (§6.2 "Read-back mirrors the
// protocol").
func GetData(blob []byte, msgIndex uint32, maxSize int) (Chunk, error) {
	if blob == nil {
		return Chunk{}, ErrNoConfig
	}
	if maxSize <= 0 {
		return Chunk{}, ErrConfigMalformed
	}

	offset := int(msgIndex) * maxSize
	if offset > len(blob) {
		return Chunk{}, ErrConfigMalformed
	}

	n := len(blob) - offset
	if n > maxSize {
		n = maxSize
	}

	return Chunk{
		MsgIndex:       msgIndex,
		NumElems:       uint32(n),
		ElemsRemaining: uint32(len(blob) - offset - n),
		Data:           blob[offset : offset+n],
	}, nil
}
