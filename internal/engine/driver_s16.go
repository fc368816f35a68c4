package engine

// S16Frag adapts interleaved 16-bit PCM source/sink buffers to SampleFrag,
// converting to/from Q15 at the boundary (§6.3).
type S16Frag struct {
	Source, Sink []int16
	Channels     int
}

func (f *S16Frag) ReadFrame(ch, frame int) Q {
	v := f.Source[frame*f.Channels+ch]
	return q15ToQ31(Q(v))
}

func (f *S16Frag) WriteFrame(ch, frame int, v Q) {
	f.Sink[frame*f.Channels+ch] = int16(q31ToQ15(v))
}

// q15ToQ31 widens a Q15 sample to Q31 by left-shifting into the high bits.
func q15ToQ31(v Q) Q { return v << 16 }

// q31ToQ15 narrows a Q31 sample to Q15 by arithmetic right shift,
// discarding the low fractional bits.
func q31ToQ15(v Q) Q { return v >> 16 }
