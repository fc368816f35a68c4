// Command drchost drives a stage.Stage the way a real pipeline host would:
// create, prepare, start, repeated copy, stop, free. By default it runs a
// headless raw-PCM smoke test (no audio hardware); with -live it opens a
// real microphone/speaker loopback through portaudio for manual listening
// tests.
package main

import (
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/drcstage/drc/internal/engine"
	"github.com/drcstage/drc/internal/stage"
	"github.com/drcstage/drc/internal/telemetry"
	"github.com/drcstage/drc/pkg/drcconfig"
)

func main() {
	var (
		sampleRate   = pflag.Float64P("sample-rate", "r", 48000, "stream sample rate in Hz")
		channels     = pflag.IntP("channels", "c", 2, "channel count")
		periodFrames = pflag.IntP("period-frames", "f", 512, "frames per period")
		configPath   = pflag.StringP("config", "C", "", "YAML compressor configuration file (defaults built in if empty)")
		inPath       = pflag.StringP("in", "i", "", "raw interleaved S16_LE PCM input file (headless mode)")
		outPath      = pflag.StringP("out", "o", "", "raw interleaved S16_LE PCM output file (headless mode)")
		live         = pflag.Bool("live", false, "open a real microphone/speaker loopback via portaudio instead of files")
		verbose      = pflag.BoolP("verbose", "v", false, "debug-level logging")
		help         = pflag.Bool("help", false, "display help text")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - run the DRC pipeline stage against a PCM stream.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	level := charmlog.InfoLevel
	if *verbose {
		level = charmlog.DebugLevel
	}
	log := telemetry.New(level)

	knobs := engine.DefaultKnobs()
	if *configPath != "" {
		k, err := drcconfig.LoadFile(*configPath)
		if err != nil {
			log.StageError("load_config", err)
			os.Exit(1)
		}
		knobs = k
	}

	p, err := engine.Compile(knobs, *sampleRate)
	if err != nil {
		log.StageError("compile_config", err)
		os.Exit(1)
	}

	st, err := stage.NewWithLogger(nil, log)
	if err != nil {
		log.StageError("new_stage", err)
		os.Exit(1)
	}
	if err := st.SetData(fullConfigChunk(&p)); err != nil {
		log.StageError("set_data", err)
		os.Exit(1)
	}

	sp := stage.StreamParams{
		Format:       stage.FormatS16LE,
		Channels:     *channels,
		SampleRate:   *sampleRate,
		Periods:      4,
		PeriodFrames: *periodFrames,
	}
	if err := st.Prepare(sp, sp); err != nil {
		log.StageError("prepare", err)
		os.Exit(1)
	}
	if err := st.Trigger(stage.TriggerStart); err != nil {
		log.StageError("start", err)
		os.Exit(1)
	}
	// Deferred calls run LIFO: Stop (ACTIVE->PREPARED), then Reset
	// (PREPARED->READY), then Free, matching the lifecycle table's
	// requirement that free only runs from READY.
	defer st.Free()
	defer st.Trigger(stage.TriggerReset)
	defer st.Trigger(stage.TriggerStop)

	if *live {
		if err := runLive(st, *sampleRate, *channels, *periodFrames, log); err != nil {
			log.StageError("live", err)
			os.Exit(1)
		}
		return
	}

	if err := runHeadless(st, *inPath, *outPath, *channels, *periodFrames); err != nil {
		log.StageError("headless", err)
		os.Exit(1)
	}
}

// fullConfigChunk encodes p and wraps the resulting blob as a single-chunk
// upload, the common case for a host that compiles its config up front
// rather than streaming it incrementally.
func fullConfigChunk(p *engine.Params) stage.Chunk {
	blob := stage.EncodeParams(p)
	return stage.Chunk{MsgIndex: 0, NumElems: uint32(len(blob)), ElemsRemaining: 0, Data: blob}
}

// runHeadless reads interleaved S16_LE samples from inPath, runs them
// through the stage one period at a time, and writes the result to
// outPath. Either path may be empty, in which case silence is read from
// or output is discarded to, respectively.
func runHeadless(st *stage.Stage, inPath, outPath string, channels, periodFrames int) error {
	var in io.Reader = zeroReader{}
	if inPath != "" {
		f, err := os.Open(inPath)
		if err != nil {
			return fmt.Errorf("drchost: open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = io.Discard
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("drchost: create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	src := make([]int16, periodFrames*channels)
	sink := make([]int16, periodFrames*channels)
	rawIn := make([]byte, len(src)*2)

	for {
		n, err := io.ReadFull(in, rawIn)
		if n == 0 {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("drchost: read input: %w", err)
			}
		}
		frames := n / (2 * channels)
		if frames == 0 {
			return nil
		}
		bytesToSamples(rawIn[:frames*channels*2], src[:frames*channels])

		if err := st.CopyS16(src[:frames*channels], sink[:frames*channels], frames); err != nil {
			return err
		}

		rawOut := make([]byte, frames*channels*2)
		samplesToBytes(sink[:frames*channels], rawOut)
		if _, err := out.Write(rawOut); err != nil {
			return fmt.Errorf("drchost: write output: %w", err)
		}

		if inPath == "" {
			return nil
		}
	}
}

// runLive opens a real-time microphone/speaker loopback through
// portaudio, optionally raising the process's scheduling priority so the
// audio callback isn't starved under load.
func runLive(st *stage.Stage, sampleRate float64, channels, periodFrames int, log *telemetry.Logger) error {
	if err := raiseSchedulingPriority(log); err != nil {
		log.StageError("raise_scheduling_priority", err)
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("drchost: portaudio init: %w", err)
	}
	defer portaudio.Terminate()

	buf := make([]int16, periodFrames*channels)
	params := portaudio.LowLatencyParameters(nil, nil)
	params.Input.Channels = channels
	params.Output.Channels = channels
	params.SampleRate = sampleRate
	params.FramesPerBuffer = periodFrames

	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return fmt.Errorf("drchost: open stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("drchost: start stream: %w", err)
	}
	defer stream.Stop()

	log.Transition("idle", "live-loopback")
	for {
		if err := stream.Read(); err != nil {
			return fmt.Errorf("drchost: read stream: %w", err)
		}
		if err := st.CopyS16(buf, buf, periodFrames); err != nil {
			return err
		}
		if err := stream.Write(); err != nil {
			return fmt.Errorf("drchost: write stream: %w", err)
		}
	}
}

// raiseSchedulingPriority lowers the process niceness so the live audio
// callback is less likely to be preempted; failures are non-fatal since
// this is a best-effort affordance for manual testing, not a correctness
// requirement.
func raiseSchedulingPriority(log *telemetry.Logger) error {
	return unix.Setpriority(unix.PRIO_PROCESS, 0, -10)
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func bytesToSamples(b []byte, s []int16) {
	for i := range s {
		s[i] = int16(uint16(b[2*i]) | uint16(b[2*i+1])<<8)
	}
}

func samplesToBytes(s []int16, b []byte) {
	for i, v := range s {
		b[2*i] = byte(v)
		b[2*i+1] = byte(v >> 8)
	}
}
