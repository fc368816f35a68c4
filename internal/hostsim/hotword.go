package hostsim

import "github.com/drcstage/drc/internal/stage"

// EventSink is the host-IPC event emission boundary the hotword-detection
// sibling component posts through (§6.4). The DRC stage never calls this
// itself; it exists so a pipeline host wiring both components together can
// be exercised here without depending on the real sibling's internals.
type EventSink interface {
	// Emit posts a named event with an opaque payload, e.g. a detected
	// key-phrase notification.
	Emit(name string, payload []byte) error
}

// Drainer notifies a consumer that buffered detection results are ready
// to be read, mirroring the sibling's "drain the key-phrase buffer"
// contract (§6.4).
type Drainer interface {
	Drain() ([]byte, error)
}

// ModelUpload reuses the §6.2 chunked configuration transport to carry a
// hotword detection model blob instead of a compressor configuration —
// same wire shape, so a host can share one chunked upload code path across
// both sibling stages. Chunks carry no payload type tag: which kind of
// blob an upload holds is known only from the ModelUpload or Stage it is
// sent to.
type ModelUpload struct {
	transport stage.Transport
	live      []byte
}

// SetData accepts one chunk of an incoming model upload.
func (m *ModelUpload) SetData(c stage.Chunk) error {
	blob, finished, err := m.transport.SetData(c)
	if err != nil {
		return err
	}
	if finished {
		m.live = blob
	}
	return nil
}

// GetData reads back a chunk of the currently loaded model.
func (m *ModelUpload) GetData(msgIndex uint32, maxSize int) (stage.Chunk, error) {
	if m.live == nil {
		return stage.Chunk{}, stage.ErrNoConfig
	}
	return stage.GetData(m.live, msgIndex, maxSize)
}

// Busy reports whether a model upload is currently in progress.
func (m *ModelUpload) Busy() bool { return m.transport.Busy() }

// NopEventSink discards every event; useful as a default when a host
// hasn't wired a real IPC sink yet.
type NopEventSink struct{}

// Emit implements EventSink by discarding the event.
func (NopEventSink) Emit(name string, payload []byte) error { return nil }
