package engine

// S24Frag adapts interleaved 24-bit-in-32-bit-container PCM source/sink
// buffers to SampleFrag, converting to/from Q23 at the boundary (§6.3).
// The open question in §9 about S24/S32 fragment copies being stubbed in
// the original is resolved here: the detector/envelope are format
// independent per §4.6, so only the container width and Q-fraction change
// relative to S16Frag.
type S24Frag struct {
	Source, Sink []int32
	Channels     int
}

func (f *S24Frag) ReadFrame(ch, frame int) Q {
	v := f.Source[frame*f.Channels+ch]
	return q23ToQ31(Q(v))
}

func (f *S24Frag) WriteFrame(ch, frame int, v Q) {
	f.Sink[frame*f.Channels+ch] = int32(q31ToQ23(v))
}

func q23ToQ31(v Q) Q { return v << 8 }
func q31ToQ23(v Q) Q { return v >> 8 }
