package engine

// Driver runs the per-copy processing loop (§4.6): it splits an incoming
// frame range into division-aligned fragments, writes them into the
// pre-delay, reads the delayed samples out to the sink, and triggers a
// division update (detector -> envelope -> compress) whenever a division
// boundary is crossed.
//
// SampleFrag abstracts the one piece of the loop that differs per wire
// format (S16/S24/S32): converting between the stream's native container
// and the Q31 pre-delay representation.
type SampleFrag interface {
	// ReadFrame returns frame f, channel ch of source as Q31.
	ReadFrame(ch, f int) Q
	// WriteFrame writes a Q31 value to frame f, channel ch of sink.
	WriteFrame(ch, f int, v Q)
}

// Copy runs one division-fragmented pass of frames frames over src/sink
// using frag for format conversion, advancing s's pre-delay indices and
// invoking processDivision at every division boundary crossed.
//
// enabled selects pass-through: when false, frames are copied straight
// from src to sink with no pre-delay or state update (§4.6 step 1, §8
// invariant 5).
func Copy(s *State, p *Params, frag SampleFrag, nch, frames int) {
	if !p.Enabled {
		passThrough(frag, nch, frames)
		return
	}

	primeIfNeeded(s, p, nch)

	offset := s.preDelay[0].writeIndex & divisionFramesMask
	i := 0
	for i < frames {
		fragment := DivisionFrames - offset
		if remaining := frames - i; fragment > remaining {
			fragment = remaining
		}

		writeIndex := s.preDelay[0].writeIndex
		readIndex := s.preDelay[0].readIndex

		for ch := 0; ch < nch; ch++ {
			for f := 0; f < fragment; f++ {
				in := frag.ReadFrame(ch, i+f)
				out := s.preDelay[ch].At(readIndex + f)
				s.preDelay[ch].Set(writeIndex+f, in)
				frag.WriteFrame(ch, i+f, out)
			}
		}

		newWrite := (writeIndex + fragment) & maxPreDelayFramesMask
		newRead := (readIndex + fragment) & maxPreDelayFramesMask
		for ch := 0; ch < nch; ch++ {
			s.preDelay[ch].writeIndex = newWrite
			s.preDelay[ch].readIndex = newRead
		}

		i += fragment
		offset = (offset + fragment) & divisionFramesMask

		if offset == 0 {
			processDivision(s, p, nch)
		}
	}
}

// passThrough copies frames samples on every channel straight from
// source to sink with no delay or state mutation.
func passThrough(frag SampleFrag, nch, frames int) {
	for ch := 0; ch < nch; ch++ {
		for f := 0; f < frames; f++ {
			frag.WriteFrame(ch, f, frag.ReadFrame(ch, f))
		}
	}
}
