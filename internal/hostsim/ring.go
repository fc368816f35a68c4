// Package hostsim provides in-process stand-ins for the pipeline host
// collaborators the stage consumes (§6.1, §6.4): the copy-limits helper,
// the DMA coherency barriers, and the hotword sibling's boundary types.
// It has no ring-buffer type; source and sink are plain slices passed to
// the stage's Copy methods. None of this is the real pipeline host.
package hostsim

// CopyLimits reports how many frames and bytes are available to move in
// one copy invocation, mirroring comp_get_copy_limits (§6.1).
type CopyLimits struct {
	Frames      int
	SourceBytes int
	SinkBytes   int
}

// GetCopyLimits returns the number of frames both source and sink can
// move this copy: the minimum of what source has available and what sink
// has room for, in frames, times the per-frame byte width.
func GetCopyLimits(sourceAvailFrames, sinkFreeFrames, bytesPerFrame int) CopyLimits {
	frames := sourceAvailFrames
	if sinkFreeFrames < frames {
		frames = sinkFreeFrames
	}
	if frames < 0 {
		frames = 0
	}
	return CopyLimits{
		Frames:      frames,
		SourceBytes: frames * bytesPerFrame,
		SinkBytes:   frames * bytesPerFrame,
	}
}

// Invalidate and Writeback stand in for the DMA-visibility barriers of §5
// "Shared resources". On a simulated in-process buffer there is no cache
// line to flush, so both are no-ops. Neither the engine nor the stage
// package calls them.
func Invalidate(buf []byte, bytes int) {}

func Writeback(buf []byte, bytes int) {}
