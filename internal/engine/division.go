package engine

// processDivision runs the full per-division update (§4.3-§4.5): detector,
// then envelope, then output compression on the next division about to be
// read from the pre-delay.
func processDivision(s *State, p *Params, nch int) {
	updateDetectorAverage(s, p, nch)
	updateEnvelope(s, p)
	compressOutput(s, p, nch)
}

// primeIfNeeded runs envelope+compress once, without the detector, to
// populate the initial envelope rate and gain before any input division
// has been fully written (§4.6 step 2, §9 priming open question). The
// detector is intentionally skipped here: detector_average is still at
// its Q30 zero value on this pass, matching the original's documented
// warm-up transient (see DESIGN.md "Open Questions").
func primeIfNeeded(s *State, p *Params, nch int) {
	if s.processed {
		return
	}
	updateEnvelope(s, p)
	compressOutput(s, p, nch)
	s.processed = true
}
