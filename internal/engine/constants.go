package engine

const (
	// DivisionFrames is the processing granularity: detector and envelope
	// updates happen once per this many frames.
	DivisionFrames = 32

	// divisionFramesMask masks an index down to its offset within a
	// division; valid because DivisionFrames is a power of two.
	divisionFramesMask = DivisionFrames - 1

	// MaxPreDelayFrames is the capacity of each per-channel pre-delay
	// ring, a power of two and a small multiple of DivisionFrames.
	MaxPreDelayFrames = 1024

	// maxPreDelayFramesMask masks an index into the pre-delay ring.
	maxPreDelayFramesMask = MaxPreDelayFrames - 1

	// DefaultPreDelayFrames is the initial write/read index separation
	// absent any configuration: write leads read by this many frames.
	DefaultPreDelayFrames = 96

	// MaxChannels bounds the channel count the engine will allocate
	// pre-delay rings for.
	MaxChannels = 8

	// MaxConfigBytes bounds the size of an uploaded configuration blob
	// (see §6.2 of the wire contract).
	MaxConfigBytes = 4096
)
