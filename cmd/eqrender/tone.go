package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-eq/dsp/buffer"
	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/dsp/signal"
)

type toneOptions struct {
	kind      string
	freq      float64
	endFreq   float64
	amplitude float64
	duration  time.Duration
	bitDepth  int
	channels  int
	seed      int64
}

func toneCommand(a *app) *cobra.Command {
	o := toneOptions{}

	cmd := &cobra.Command{
		Use:   "tone OUT.wav",
		Short: "Write a test signal (sine, noise, sweep or impulse)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			frames, err := a.writeTone(args[0], o)
			if err != nil {
				return err
			}
			a.log.Info("tone written", "output", args[0], "type", o.kind, "frames", frames)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.kind, "type", "sine", "signal type: sine, noise, sweep or impulse")
	f.Float64Var(&o.freq, "freq", 1000, "sine frequency or sweep start in Hz")
	f.Float64Var(&o.endFreq, "end-freq", 20000, "sweep end frequency in Hz")
	f.Float64Var(&o.amplitude, "amplitude", 0.5, "peak amplitude (0..1]")
	f.DurationVar(&o.duration, "duration", time.Second, "signal length")
	f.IntVar(&o.bitDepth, "bit-depth", 16, "PCM bit depth: 16, 24 or 32")
	f.IntVar(&o.channels, "channels", 1, "channel count; every channel carries the same signal")
	f.Int64Var(&o.seed, "seed", 1, "noise seed")

	return cmd
}

func (a *app) writeTone(path string, o toneOptions) (int, error) {
	rate := a.cfg.Render.SampleRate
	frames := int(o.duration.Seconds() * rate)
	if frames <= 0 {
		return 0, fmt.Errorf("duration %v is shorter than one frame", o.duration)
	}
	if o.channels < 1 || o.channels > 8 {
		return 0, fmt.Errorf("channel count %d out of range [1, 8]", o.channels)
	}
	switch o.bitDepth {
	case 16, 24, 32:
	default:
		return 0, fmt.Errorf("unsupported bit depth %d", o.bitDepth)
	}

	gen := signal.NewGeneratorWithOptions([]core.ProcessorOption{core.WithSampleRate(rate)}, signal.WithSeed(o.seed))

	var (
		data []float64
		err  error
	)
	switch strings.ToLower(o.kind) {
	case "sine":
		data, err = gen.Sine(o.freq, o.amplitude, frames)
	case "noise":
		data, err = gen.WhiteNoise(o.amplitude, frames)
	case "sweep":
		data, err = gen.LogSweep(o.freq, o.endFreq, o.amplitude, frames)
	case "impulse":
		data, err = gen.Impulse(o.amplitude, frames, 0)
	default:
		return 0, fmt.Errorf("unknown signal type %q", o.kind)
	}
	if err != nil {
		return 0, err
	}

	samples := signal.Float32(data)
	block := a.cfg.Render.BlockSize

	w, err := createWAV(path, int(rate), o.bitDepth, o.channels, block, nil)
	if err != nil {
		return 0, err
	}

	planar := buffer.NewPlanar(o.channels, block)
	for start := 0; start < frames; start += block {
		n := min(block, frames-start)
		for ch := range o.channels {
			copy(planar.Channel(ch), samples[start:start+n])
		}
		if err := w.write(planar, n); err != nil {
			_ = w.Close()
			return 0, err
		}
	}

	return frames, w.Close()
}
